package algorithm_manager

import (
	"github.com/ecopia-map/cesium_instancer/internal/converters"
	"github.com/ecopia-map/cesium_instancer/internal/placement"
)

type AlgorithmManager interface {
	GetElevationCorrectionAlgorithm() converters.ElevationCorrector
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
	GetPlacementAlgorithm() *placement.Computer
}
