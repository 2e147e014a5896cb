package std_algorithm_manager

import (
	"fmt"

	"github.com/ecopia-map/cesium_instancer/internal/converters"
	"github.com/ecopia-map/cesium_instancer/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/cesium_instancer/internal/converters/ellipsoid_converter"
	"github.com/ecopia-map/cesium_instancer/internal/converters/proj4_converter"
	"github.com/ecopia-map/cesium_instancer/internal/loader"
	"github.com/ecopia-map/cesium_instancer/internal/placement"
	"github.com/ecopia-map/cesium_instancer/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options             *loader.LoaderOptions
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
	placement           *placement.Computer
}

func NewAlgorithmManager(opts *loader.LoaderOptions) (algorithm_manager.AlgorithmManager, error) {
	coordinateConverter, err := defineCoordinateConverterAlgorithm(opts)
	if err != nil {
		return nil, err
	}
	elevationCorrector := defineElevationCorrectionAlgorithm(opts)

	return &StandardAlgorithmManager{
		options:             opts,
		coordinateConverter: coordinateConverter,
		elevationCorrector:  elevationCorrector,
		placement:           placement.NewComputer(coordinateConverter, elevationCorrector),
	}, nil
}

func (algorithmManager *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return algorithmManager.elevationCorrector
}

func (algorithmManager *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return algorithmManager.coordinateConverter
}

func (algorithmManager *StandardAlgorithmManager) GetPlacementAlgorithm() *placement.Computer {
	return algorithmManager.placement
}

func defineCoordinateConverterAlgorithm(opts *loader.LoaderOptions) (converters.CoordinateConverter, error) {
	switch opts.Converter {
	case loader.ConverterEllipsoid:
		return ellipsoid_converter.NewWGS84Converter(), nil
	case loader.ConverterProj4:
		return proj4_converter.NewProj4CoordinateConverter()
	}
	return nil, fmt.Errorf("%w: unknown converter %q", loader.ErrInvalidOptions, opts.Converter)
}

func defineElevationCorrectionAlgorithm(opts *loader.LoaderOptions) converters.ElevationCorrector {
	return offset_elevation_corrector.NewOffsetElevationCorrector(opts.HeightOffset)
}
