package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ecopia-map/cesium_instancer/internal/cache"
	"gopkg.in/yaml.v3"
)

var ErrInvalidOptions = errors.New("invalid loader options")

type Converter string

const (
	// Analytic WGS84 ellipsoid math, no external library needed
	ConverterEllipsoid Converter = "ELLIPSOID"

	// Geodetic to geocentric conversion through proj4. Requires the proj library at runtime.
	ConverterProj4 Converter = "PROJ4"
)

func (c Converter) String() string {
	if c == ConverterEllipsoid {
		return "ELLIPSOID"
	} else if c == ConverterProj4 {
		return "PROJ4"
	}
	return ""
}

func ParseConverter(value string) Converter {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	if normalizedValue == "ELLIPSOID" {
		return ConverterEllipsoid
	} else if normalizedValue == "PROJ4" {
		return ConverterProj4
	}
	return ""
}

// Contains the options needed to load instanced 3d model tiles. Instances carry no height of their own:
// with the default HeightOffset of 0 every instance sits on the ellipsoid surface, a non-zero offset
// raises all of them uniformly.
type LoaderOptions struct {
	BaseURL        string        `yaml:"base_url"`        // Location against which relative mesh uris are resolved
	MaxRequests    int           `yaml:"max_requests"`    // Max number of outstanding requests
	Workers        int           `yaml:"workers"`         // Number of goroutines fetching payloads
	HeightOffset   float64       `yaml:"height_offset"`   // Height in meters given to every instance, 0 by default
	Converter      Converter     `yaml:"converter"`       // Coordinate converter to use
	Cache          cache.Config  `yaml:"cache"`           // Payload cache, disabled when no store is set
	MetricsAddr    string        `yaml:"metrics_addr"`    // Address of the prometheus endpoint, disabled if empty
	RequestTimeout time.Duration `yaml:"request_timeout"` // Timeout of a single http request
}

func DefaultOptions() *LoaderOptions {
	return &LoaderOptions{
		MaxRequests:    50,
		Workers:        8,
		Converter:      ConverterEllipsoid,
		RequestTimeout: 30 * time.Second,
	}
}

// Reads the yaml file at filePath on top of the default options
func LoadOptions(filePath string) (*LoaderOptions, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOptions, filePath, err)
	}
	return opts, opts.Validate()
}

// Checks the options, normalizing the converter name
func (opt *LoaderOptions) Validate() error {
	opt.Converter = ParseConverter(string(opt.Converter))
	if opt.Converter == "" {
		return fmt.Errorf("%w: converter should be either ELLIPSOID or PROJ4", ErrInvalidOptions)
	}
	if opt.MaxRequests < 1 {
		return fmt.Errorf("%w: max_requests must be at least 1", ErrInvalidOptions)
	}
	if opt.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidOptions)
	}
	if opt.RequestTimeout < 0 {
		return fmt.Errorf("%w: request_timeout cannot be negative", ErrInvalidOptions)
	}
	if opt.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache ttl cannot be negative", ErrInvalidOptions)
	}
	if opt.Cache.NATSURL != "" && !opt.Cache.Enabled() {
		return fmt.Errorf("%w: cache invalidation requires a cache dir or a redis address", ErrInvalidOptions)
	}
	return nil
}

func (opt *LoaderOptions) Copy() *LoaderOptions {
	newOpt := *opt
	return &newOpt
}
