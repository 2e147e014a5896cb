package headless

import (
	"context"
	"fmt"
	"sync"

	"github.com/ecopia-map/cesium_instancer/internal/content"
	"github.com/ecopia-map/cesium_instancer/internal/fetch"
	"github.com/ecopia-map/cesium_instancer/internal/future"
	"github.com/ecopia-map/cesium_instancer/internal/geometry"
	"github.com/ecopia-map/cesium_instancer/internal/placement"
	"github.com/golang/glog"
)

// InstanceCollection holds the placed instances and the loaded shared mesh, without rendering them
type InstanceCollection struct {
	instances      []placement.Instance
	boundingVolume geometry.BoundingVolume
	ready          *future.Future[struct{}]
	cancel         context.CancelFunc

	mu        sync.RWMutex
	mesh      *MeshInfo
	frames    uint64
	destroyed bool
}

// Starts loading the mesh. Embedded meshes are inspected right away, mesh URLs are fetched with load.
func NewInstanceCollection(options content.CollectionOptions, load fetch.LoadFunc) (*InstanceCollection, error) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &InstanceCollection{
		instances:      options.Instances,
		boundingVolume: options.BoundingVolume,
		ready:          future.New[struct{}](),
		cancel:         cancel,
	}

	mesh := options.Mesh
	switch {
	case mesh.Embedded != nil:
		c.setMesh(inspectMesh(mesh.Embedded))
	case mesh.URL != "":
		if load == nil {
			cancel()
			return nil, fmt.Errorf("no loader available for mesh %s", mesh.URL)
		}
		go func() {
			data, err := load(ctx, mesh.URL)
			if err != nil {
				c.ready.Reject(err)
				return
			}
			c.setMesh(inspectMesh(data))
		}()
	default:
		cancel()
		return nil, fmt.Errorf("%w: no mesh url nor embedded mesh", ErrUnsupportedMesh)
	}
	return c, nil
}

func (c *InstanceCollection) setMesh(info *MeshInfo, err error) {
	if err != nil {
		c.ready.Reject(err)
		return
	}
	c.mu.Lock()
	c.mesh = info
	c.mu.Unlock()
	c.ready.Resolve(struct{}{})
	glog.V(2).Infof("mesh loaded: glTF %s, binary %t, %d bytes", info.Version, info.Binary, info.ByteLength)
}

func (c *InstanceCollection) Ready() *future.Future[struct{}] {
	return c.ready
}

func (c *InstanceCollection) Instances() []placement.Instance {
	return c.instances
}

func (c *InstanceCollection) BoundingVolume() geometry.BoundingVolume {
	return c.boundingVolume
}

// Returns nil until the mesh is loaded
func (c *InstanceCollection) Mesh() *MeshInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mesh
}

func (c *InstanceCollection) Update(content.FrameState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return content.ErrDestroyed
	}
	if c.mesh == nil {
		return nil
	}
	c.frames++
	return nil
}

// Number of frames the collection was updated for once its mesh was loaded
func (c *InstanceCollection) Frames() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frames
}

func (c *InstanceCollection) Destroy() {
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
	c.instances = nil
}
