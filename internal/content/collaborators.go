package content

import (
	"context"
	"time"

	"github.com/ecopia-map/cesium_instancer/internal/fetch"
	"github.com/ecopia-map/cesium_instancer/internal/future"
	"github.com/ecopia-map/cesium_instancer/internal/geometry"
	"github.com/ecopia-map/cesium_instancer/internal/i3dm"
	"github.com/ecopia-map/cesium_instancer/internal/placement"
)

// FrameState is handed to the owned resources on every Update
type FrameState struct {
	FrameNumber uint64
	Time        time.Time
}

// Throttle grants request slots. It returns false when no slot is available right now, in which case
// load is never called.
type Throttle interface {
	Throttle(ctx context.Context, url string, load fetch.LoadFunc) (*future.Future[[]byte], bool)
}

// AttributeTable is the per-instance property store backing the features of a content
type AttributeTable interface {
	Document() i3dm.Document
	SetDocument(document i3dm.Document)
	Update(frameState FrameState) error
	Destroy()
}

// InstanceCollection renders every instance of the shared mesh
type InstanceCollection interface {
	// Settles once the collection finished loading its mesh
	Ready() *future.Future[struct{}]
	Update(frameState FrameState) error
	Destroy()
}

// MeshSource is either a resolved URL or the embedded mesh definition
type MeshSource struct {
	URL      string
	Embedded []byte
	// location against which resources referenced by the mesh are resolved
	BasePath string
}

type CollectionOptions struct {
	Instances      []placement.Instance
	AttributeTable AttributeTable
	BoundingVolume geometry.BoundingVolume
	Mesh           MeshSource
}

// ResourceFactory builds the downstream resources of a content. Both constructors run while the content is
// finalizing its decode: they may keep the content reference and read its immutable accessors, but must
// not call Update, Destroy or GetModel on it.
type ResourceFactory interface {
	NewAttributeTable(content *Content, instanceCount int) (AttributeTable, error)
	NewInstanceCollection(options CollectionOptions) (InstanceCollection, error)
}

// Tile is the owner of a content
type Tile interface {
	ContentBoundingVolume() geometry.BoundingVolume
}

// Tileset provides the location against which relative mesh URIs are resolved
type Tileset interface {
	BaseURL() string
}
