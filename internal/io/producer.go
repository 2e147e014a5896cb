package io

import (
	"context"

	"github.com/ecopia-map/cesium_instancer/internal/fetch"
	"github.com/ecopia-map/cesium_instancer/internal/future"
)

// Producer hands out request slots and submits the work of every granted request to the consumers
type Producer interface {
	Throttle(ctx context.Context, url string, load fetch.LoadFunc) (*future.Future[[]byte], bool)
	Close()
}
