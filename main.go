/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/ecopia-map/cesium_instancer/internal/fetch"
	"github.com/ecopia-map/cesium_instancer/internal/loader"
	"github.com/ecopia-map/cesium_instancer/internal/metrics"
	"github.com/ecopia-map/cesium_instancer/pkg"
	"github.com/ecopia-map/cesium_instancer/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/cesium_instancer/tools"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
)

const VERSION = "0.3.0"

const logo = `
                 _                _           _
  ___ ___  ___ (_)_   _ _ __ ___ (_)_ __  ___| |_ __ _ _ __   ___ ___ _ __
 / __/ _ \/ __|| | | | | '_ ' _ \| | '_ \/ __| __/ _' | '_ \ / __/ _ \ '__|
| (_|  __/\__ \| | |_| | | | | | | | | | \__ \ || (_| | | | | (_|  __/ |
 \___\___||___/|_|\__,_|_| |_| |_|_|_| |_|___/\__\__,_|_| |_|\___\___|_|
  An instanced 3D model tile loader written in golang
  Copyright YYYY - Ecopia Map
`

func main() {
	log.SetPrefix("[instancer] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds | log.Lshortfile)

	flagsGlobal := tools.ParseFlagsGlobal()
	glog.V(1).Infoln(tools.FmtJSONString(flagsGlobal))
	defer glog.Flush()

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("Please specify a subcommand [inspect|load|pack].")
	}
	cmd, args := args[0], args[1:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case tools.CommandInspect:
		mainCommandInspect(ctx, args)
	case tools.CommandLoad:
		mainCommandLoad(ctx, args)
	case tools.CommandPack:
		mainCommandPack(args)
	default:
		log.Fatalf("Unrecognized command [%q]. Command must be one of [inspect|load|pack]", cmd)
	}
}

func setupOutput(inputFlags tools.InputFlags) {
	if *inputFlags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
}

func mainCommandInspect(ctx context.Context, args []string) {
	flags := tools.ParseFlagsForCommandInspect(args)
	setupOutput(flags.InputFlags)

	tiles, err := tools.NewStandardFileFinder().GetTilesToProcess(*flags.Input, *flags.Recursive)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}

	load := fetch.NewFetcher().Load
	for _, tile := range tiles {
		report, err := pkg.Inspect(ctx, load, tile, *flags.MaxInstances, int32(*flags.Precision))
		if err != nil {
			log.Fatalf("Error while inspecting %s: %v", tile, err)
		}
		fmt.Println(tools.FmtJSONString(report))
	}
}

func mainCommandLoad(ctx context.Context, args []string) {
	flags := tools.ParseFlagsForCommandLoad(args)
	setupOutput(flags.InputFlags)

	opts, err := loadOptions(&flags)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	glog.V(1).Infoln("options", tools.FmtJSONString(opts))

	tiles, err := tools.NewStandardFileFinder().GetTilesToProcess(*flags.Input, *flags.Recursive)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}

	if opts.MetricsAddr != "" {
		metrics.StartHTTP(opts.MetricsAddr)
	}

	algorithmManager, err := std_algorithm_manager.NewAlgorithmManager(opts)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	l, err := pkg.NewLoader(opts, algorithmManager, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("Error while starting the loader: ", err)
	}
	defer func() {
		if err := l.Close(); err != nil {
			glog.Errorf("closing loader: %v", err)
		}
	}()

	defer timeTrack(time.Now(), "load")
	contents, err := l.LoadAll(ctx, tiles, nil)
	if err != nil {
		glog.Errorf("Error while loading: %v", err)
		return
	}

	instances := 0
	for _, c := range contents {
		tools.LogOutput(fmt.Sprintf("%s: %s, %d instances", c.URL(), c.State(), c.InstanceCount()))
		instances += c.InstanceCount()
		c.Destroy()
	}
	tools.LogOutput(fmt.Sprintf("Loaded %d tiles, %d instances", len(contents), instances))
}

// Reads the optional yaml config, then applies the flags that were set on top of it
func loadOptions(flags *tools.FlagsForCommandLoad) (*loader.LoaderOptions, error) {
	opts := loader.DefaultOptions()
	if *flags.Config != "" {
		var err error
		if opts, err = loader.LoadOptions(*flags.Config); err != nil {
			return nil, err
		}
	}

	if *flags.BaseURL != "" {
		opts.BaseURL = *flags.BaseURL
	}
	if *flags.MaxRequests > 0 {
		opts.MaxRequests = *flags.MaxRequests
	}
	if *flags.Workers > 0 {
		opts.Workers = *flags.Workers
	}
	if *flags.HeightOffset != 0 {
		opts.HeightOffset = *flags.HeightOffset
	}
	if *flags.Converter != "" {
		opts.Converter = loader.Converter(strings.ToUpper(*flags.Converter))
	}
	if *flags.CacheDir != "" {
		opts.Cache.Dir = *flags.CacheDir
	}
	if *flags.MetricsAddr != "" {
		opts.MetricsAddr = *flags.MetricsAddr
	}
	if *flags.RequestTimeout != "" {
		timeout, err := time.ParseDuration(*flags.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("%w: timeout: %w", loader.ErrInvalidOptions, err)
		}
		opts.RequestTimeout = timeout
	}

	return opts, opts.Validate()
}

func mainCommandPack(args []string) {
	flags := tools.ParseFlagsForCommandPack(args)

	if msg, res := validateOptionsForCommandPack(&flags); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	payload, err := pkg.PackFile(*flags.Input)
	if err != nil {
		log.Fatal("Error while packing: ", err)
	}
	if err := tools.WriteFile(*flags.Output, payload); err != nil {
		log.Fatal("Error while writing: ", err)
	}
	tools.LogOutput(fmt.Sprintf("Written %s, %d bytes", *flags.Output, len(payload)))
}

func validateOptionsForCommandPack(flags *tools.FlagsForCommandPack) (string, bool) {
	if _, err := os.Stat(*flags.Input); os.IsNotExist(err) {
		return "Input file not found", false
	}
	if *flags.Output == "" {
		return "Output file not specified", false
	}
	return "", true
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("CesiumInstancer is a tool that decodes, loads and packs i3dm instanced 3D model tiles consumable by Cesium.js")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Subcommands: inspect, load, pack. Run a subcommand with -h for its flags.")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
