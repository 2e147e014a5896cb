package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ecopia-map/cesium_instancer/internal/fetch"
	"github.com/ecopia-map/cesium_instancer/internal/future"
	"github.com/ecopia-map/cesium_instancer/internal/geometry"
	"github.com/ecopia-map/cesium_instancer/internal/i3dm"
	"github.com/ecopia-map/cesium_instancer/internal/metrics"
	"github.com/ecopia-map/cesium_instancer/internal/placement"
	"github.com/golang/glog"
	"github.com/google/uuid"
)

var (
	ErrDestroyed       = errors.New("content destroyed")
	ErrInvalidState    = errors.New("invalid content state")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Dependencies groups the collaborators shared by every content of a tileset
type Dependencies struct {
	Throttle  Throttle
	Load      fetch.LoadFunc
	Factory   ResourceFactory
	Placement *placement.Computer
	Metrics   *metrics.Metrics
}

type Option func(c *Content)

// Registers a listener called with every state the content enters, in order. The listener runs while the
// content is locked and must not call back into it other than through State.
func WithStateListener(listener func(State)) Option {
	return func(c *Content) {
		c.listener = listener
	}
}

// Content is the tile content of an instanced 3D model payload. It fetches the payload through the
// throttle, decodes it, places the instances and builds the attribute table and the instance collection
// that it owns from then on.
type Content struct {
	id       string
	url      string
	tileset  Tileset
	tile     Tile
	deps     Dependencies
	listener func(State)

	state         atomic.Int32
	instanceCount atomic.Int64

	mu                 sync.Mutex
	destroyed          bool
	cancel             context.CancelFunc
	attributeTable     AttributeTable
	instanceCollection InstanceCollection
	features           []*ModelFeature
	featureAllocations int

	decodeComplete *future.Future[struct{}]
	ready          *future.Future[struct{}]
}

func New(url string, tileset Tileset, tile Tile, deps Dependencies, opts ...Option) *Content {
	c := &Content{
		id:             uuid.NewString(),
		url:            url,
		tileset:        tileset,
		tile:           tile,
		deps:           deps,
		decodeComplete: future.New[struct{}](),
		ready:          future.New[struct{}](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Content) ID() string {
	return c.id
}

func (c *Content) URL() string {
	return c.url
}

func (c *Content) Tileset() Tileset {
	return c.tileset
}

func (c *Content) Tile() Tile {
	return c.tile
}

func (c *Content) State() State {
	return State(c.state.Load())
}

// Number of instances in the payload, zero until the content reached PROCESSING
func (c *Content) InstanceCount() int {
	return int(c.instanceCount.Load())
}

// Settles once the payload has been decoded and the owned resources built
func (c *Content) DecodeComplete() *future.Future[struct{}] {
	return c.decodeComplete
}

// Settles once the instance collection is ready to render
func (c *Content) Ready() *future.Future[struct{}] {
	return c.ready
}

func (c *Content) AttributeTable() AttributeTable {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attributeTable
}

func (c *Content) InstanceCollection() InstanceCollection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instanceCollection
}

func (c *Content) IsDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Asks the throttle for a request slot and starts loading the payload. Returns false when no slot was
// granted, in which case the content stays UNLOADED and the caller may retry on a later frame. ctx only
// carries values to the load; cancelling it does not abandon the content, Destroy does.
func (c *Content) Request(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return false, ErrDestroyed
	}
	if state := c.State(); state != Unloaded {
		return false, fmt.Errorf("%w: cannot request content in state %s", ErrInvalidState, state)
	}

	// only Destroy ends a load once it started
	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	pending, granted := c.deps.Throttle.Throttle(loadCtx, c.url, c.deps.Load)
	if !granted {
		cancel()
		glog.V(2).Infof("content %s: no request slot available for %s", c.id, c.url)
		return false, nil
	}

	c.cancel = cancel
	c.transition(Loading)
	go c.awaitPayload(loadCtx, pending)
	return true, nil
}

func (c *Content) awaitPayload(ctx context.Context, pending *future.Future[[]byte]) {
	payload, err := pending.Await(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		c.abandon("payload fetch")
		return
	}
	if err != nil {
		c.fail(err)
		return
	}
	if err := c.process(payload); err != nil {
		c.fail(err)
		return
	}

	c.transition(Processing)
	c.decodeComplete.Resolve(struct{}{})
	go c.awaitCollection(ctx, c.instanceCollection.Ready())
}

func (c *Content) awaitCollection(ctx context.Context, ready *future.Future[struct{}]) {
	var err error
	if ready != nil {
		_, err = ready.Await(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		c.abandon("instance collection")
		return
	}
	if err != nil {
		c.fail(err)
		return
	}

	c.transition(Ready)
	c.ready.Resolve(struct{}{})
	glog.Infof("content %s ready: %d instances from %s", c.id, c.InstanceCount(), c.url)
}

// Decodes the payload and builds the owned resources. On error nothing is published.
func (c *Content) process(payload []byte) error {
	start := time.Now()

	decoded, err := i3dm.Decode(payload, 0)
	if err != nil {
		c.deps.Metrics.ObserveDecode(start, 0, err)
		return err
	}
	instances, err := c.deps.Placement.Compute(decoded.Instances, decoded.Header.HasAttributeTable())
	if err != nil {
		c.deps.Metrics.ObserveDecode(start, 0, err)
		return err
	}
	mesh, err := c.meshSource(decoded.Mesh)
	if err != nil {
		err = fmt.Errorf("unable to resolve mesh uri %q: %w", decoded.Mesh.URI, err)
		c.deps.Metrics.ObserveDecode(start, 0, err)
		return err
	}

	count := int(decoded.Header.InstanceCount)
	table, err := c.deps.Factory.NewAttributeTable(c, count)
	if err != nil {
		return fmt.Errorf("unable to create attribute table: %w", err)
	}
	table.SetDocument(decoded.AttributeTable)

	var boundingVolume geometry.BoundingVolume
	if c.tile != nil {
		boundingVolume = c.tile.ContentBoundingVolume()
	}
	collection, err := c.deps.Factory.NewInstanceCollection(CollectionOptions{
		Instances:      instances,
		AttributeTable: table,
		BoundingVolume: boundingVolume,
		Mesh:           mesh,
	})
	if err != nil {
		table.Destroy()
		return fmt.Errorf("unable to create instance collection: %w", err)
	}

	c.instanceCount.Store(int64(count))
	c.attributeTable = table
	c.instanceCollection = collection
	c.deps.Metrics.ObserveDecode(start, count, nil)
	glog.V(1).Infof("content %s decoded: %d instances, mesh format %s", c.id, count, decoded.Header.MeshFormat)
	return nil
}

func (c *Content) meshSource(mesh i3dm.MeshPayload) (MeshSource, error) {
	base := ""
	if c.tileset != nil {
		base = c.tileset.BaseURL()
	}
	if mesh.Format == i3dm.MeshFormatEmbedded {
		return MeshSource{Embedded: mesh.Embedded, BasePath: base}, nil
	}
	resolved, err := fetch.ResolveURL(base, mesh.URI)
	if err != nil {
		return MeshSource{}, err
	}
	return MeshSource{URL: resolved, BasePath: base}, nil
}

// Forwards the frame to the attribute table and then to the instance collection
func (c *Content) Update(frameState FrameState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return ErrDestroyed
	}
	if state := c.State(); state != Processing && state != Ready {
		return fmt.Errorf("%w: cannot update content in state %s", ErrInvalidState, state)
	}
	if err := c.attributeTable.Update(frameState); err != nil {
		return err
	}
	return c.instanceCollection.Update(frameState)
}

// Releases the owned resources and abandons any pending load. Safe to call more than once and on a
// content that was never requested.
func (c *Content) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.cancel != nil {
		c.cancel()
	}
	if c.attributeTable != nil {
		c.attributeTable.Destroy()
	}
	if c.instanceCollection != nil {
		c.instanceCollection.Destroy()
	}
	c.decodeComplete.Reject(ErrDestroyed)
	c.ready.Reject(ErrDestroyed)
	glog.V(1).Infof("content %s destroyed in state %s", c.id, c.State())
}

// Returns the feature handle of instance index. Only PROCESSING and READY contents have models. All
// handles are allocated on the first valid call.
func (c *Content) GetModel(index int) (*ModelFeature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return nil, ErrDestroyed
	}
	if state := c.State(); state != Processing && state != Ready {
		return nil, fmt.Errorf("%w: cannot get a model of content in state %s", ErrInvalidState, state)
	}
	count := c.InstanceCount()
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: index %d must be in range [0, %d)", ErrInvalidArgument, index, count)
	}
	if c.features == nil {
		c.features = make([]*ModelFeature, count)
		for i := range c.features {
			c.features[i] = &ModelFeature{content: c, table: c.attributeTable, index: i}
		}
		c.featureAllocations++
	}
	return c.features[index], nil
}

// Must be called with the lock held
func (c *Content) transition(to State) {
	from := c.State()
	if !canTransition(from, to) {
		panic(fmt.Sprintf("content %s: illegal transition %s -> %s", c.id, from, to))
	}
	c.state.Store(int32(to))
	c.deps.Metrics.ObserveTransition(to.String())
	glog.V(1).Infof("content %s: %s -> %s", c.id, from, to)
	if c.listener != nil {
		c.listener(to)
	}
}

// Must be called with the lock held
func (c *Content) fail(err error) {
	c.transition(Failed)
	c.decodeComplete.Reject(err)
	c.ready.Reject(err)
	glog.Errorf("content %s failed loading %s: %v", c.id, c.url, err)
}

// Must be called with the lock held
func (c *Content) abandon(step string) {
	c.decodeComplete.Reject(ErrDestroyed)
	c.ready.Reject(ErrDestroyed)
	glog.Warningf("content %s destroyed while waiting on %s, result discarded", c.id, step)
}
