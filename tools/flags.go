package tools

import (
	"flag"

	"github.com/golang/glog"
)

const (
	CommandInspect = "inspect"
	CommandLoad    = "load"
	CommandPack    = "pack"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type InputFlags struct {
	Input     *string `json:"input"`
	Recursive *bool   `json:"recursive"`
	Silent    *bool   `json:"silent"`
}

type FlagsForCommandInspect struct {
	InputFlags
	MaxInstances *int `json:"max_instances"`
	Precision    *int `json:"precision"`
}

type FlagsForCommandLoad struct {
	InputFlags
	Config         *string  `json:"config"`
	BaseURL        *string  `json:"base_url"`
	MaxRequests    *int     `json:"max_requests"`
	Workers        *int     `json:"workers"`
	HeightOffset   *float64 `json:"height_offset"`
	Converter      *string  `json:"converter"`
	CacheDir       *string  `json:"cache_dir"`
	MetricsAddr    *string  `json:"metrics_addr"`
	RequestTimeout *string  `json:"request_timeout"`
}

type FlagsForCommandPack struct {
	Input  *string `json:"input"`
	Output *string `json:"output"`
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "v", false, "Displays the version of the instancer.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineInputFlags(flagCommand *flag.FlagSet) InputFlags {
	return InputFlags{
		Input:     defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input i3dm file, folder or url."),
		Recursive: defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all .i3dm files inside the subfolders"),
		Silent:    defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages."),
	}
}

func ParseFlagsForCommandInspect(args []string) FlagsForCommandInspect {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-inspect", flag.ExitOnError)

	inputFlags := defineInputFlags(flagCommand)
	maxInstances := defineIntFlagCommand(flagCommand, "max-instances", "n", 10, "Maximum number of instances to print, -1 prints all of them.")
	precision := defineIntFlagCommand(flagCommand, "precision", "p", 7, "Number of decimal places of the printed degrees.")

	flagCommand.Parse(args)

	return FlagsForCommandInspect{
		InputFlags:   inputFlags,
		MaxInstances: maxInstances,
		Precision:    precision,
	}
}

func ParseFlagsForCommandLoad(args []string) FlagsForCommandLoad {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-load", flag.ExitOnError)

	inputFlags := defineInputFlags(flagCommand)
	config := defineStringFlagCommand(flagCommand, "config", "c", "", "Yaml file with the loader options. Flags override its values.")
	baseURL := defineStringFlagCommand(flagCommand, "base-url", "", "", "Location against which relative mesh uris are resolved. Defaults to the tile location.")
	maxRequests := defineIntFlagCommand(flagCommand, "max-requests", "m", 0, "Maximum number of outstanding requests.")
	workers := defineIntFlagCommand(flagCommand, "workers", "w", 0, "Number of goroutines fetching payloads.")
	heightOffset := defineFloat64FlagCommand(flagCommand, "height", "z", 0, "Height in meters above the ellipsoid given to every instance.")
	converter := defineStringFlagCommand(flagCommand, "converter", "", "", "Coordinate converter, can be 'ELLIPSOID' or 'PROJ4'.")
	cacheDir := defineStringFlagCommand(flagCommand, "cache-dir", "", "", "Folder of the local payload cache. ':memory:' keeps it in memory.")
	metricsAddr := defineStringFlagCommand(flagCommand, "metrics", "", "", "Address where prometheus metrics are served, e.g. ':2112'.")
	requestTimeout := defineStringFlagCommand(flagCommand, "timeout", "", "", "Timeout of a single http request, e.g. '30s'.")

	flagCommand.Parse(args)

	return FlagsForCommandLoad{
		InputFlags:     inputFlags,
		Config:         config,
		BaseURL:        baseURL,
		MaxRequests:    maxRequests,
		Workers:        workers,
		HeightOffset:   heightOffset,
		Converter:      converter,
		CacheDir:       cacheDir,
		MetricsAddr:    metricsAddr,
		RequestTimeout: requestTimeout,
	}
}

func ParseFlagsForCommandPack(args []string) FlagsForCommandPack {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-pack", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the json description of the instances to pack.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the i3dm file to write.")

	flagCommand.Parse(args)

	return FlagsForCommandPack{
		Input:  input,
		Output: output,
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
