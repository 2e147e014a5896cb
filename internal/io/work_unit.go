package io

import (
	"context"

	"github.com/ecopia-map/cesium_instancer/internal/fetch"
	"github.com/ecopia-map/cesium_instancer/internal/future"
)

// Contains the minimal data needed to fetch a single resource while holding a request slot
type WorkUnit struct {
	Ctx    context.Context
	URL    string
	Load   fetch.LoadFunc
	Result *future.Future[[]byte]

	// gives the request slot back, called once the load has settled
	release func()
}
