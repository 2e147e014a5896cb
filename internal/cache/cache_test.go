package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ecopia-map/cesium_instancer/internal/metrics"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	name   string
	mu     sync.Mutex
	values map[string][]byte
	err    error
}

func newMapStore(name string) *mapStore {
	return &mapStore{name: name, values: map[string][]byte{}}
}

func (s *mapStore) Name() string { return s.name }

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.values[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *mapStore) Close() error { return nil }

func newMemoryBadger(t *testing.T) *BadgerStore {
	store, err := NewBadgerStore(":memory:", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStore(t *testing.T) {
	ctx := context.Background()
	store := newMemoryBadger(t)

	_, err := store.Get(ctx, "tiles/a.i3dm")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "tiles/a.i3dm", []byte("payload")))
	value, err := store.Get(ctx, "tiles/a.i3dm")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), value)

	require.NoError(t, store.Delete(ctx, "tiles/a.i3dm"))
	_, err = store.Get(ctx, "tiles/a.i3dm")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestTieredBackfill(t *testing.T) {
	ctx := context.Background()
	fast := newMapStore("fast")
	slow := newMemoryBadger(t)
	require.NoError(t, slow.Set(ctx, "k", []byte("v")))

	tiered := NewTiered(metrics.New(prometheus.NewRegistry()), fast, slow)
	value, err := tiered.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
	assert.Equal(t, []byte("v"), fast.values["k"])

	_, err = tiered.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestTieredSkipsBrokenStore(t *testing.T) {
	ctx := context.Background()
	broken := newMapStore("broken")
	broken.err = errors.New("connection refused")
	healthy := newMapStore("healthy")
	healthy.values["k"] = []byte("v")

	value, err := NewTiered(nil, broken, healthy).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
}

func TestTieredSetAndDelete(t *testing.T) {
	ctx := context.Background()
	a, b := newMapStore("a"), newMapStore("b")
	tiered := NewTiered(nil, a, b)

	require.NoError(t, tiered.Set(ctx, "k", []byte("v")))
	assert.Equal(t, []byte("v"), a.values["k"])
	assert.Equal(t, []byte("v"), b.values["k"])

	require.NoError(t, tiered.Delete(ctx, "k"))
	assert.Empty(t, a.values)
	assert.Empty(t, b.values)
}

func TestInvalidatorHandle(t *testing.T) {
	store := newMapStore("local")
	store.values["a"] = []byte("1")
	store.values["b"] = []byte("2")
	invalidator := &Invalidator{nodeID: "node-1", store: store}

	message := func(key, node string) *nats.Msg {
		data, err := json.Marshal(invalidationMessage{Key: key, NodeID: node, Timestamp: time.Now()})
		require.NoError(t, err)
		return &nats.Msg{Data: data}
	}

	invalidator.handle(message("a", "node-1"))
	assert.Contains(t, store.values, "a")

	invalidator.handle(message("a", "node-2"))
	assert.NotContains(t, store.values, "a")

	invalidator.handle(&nats.Msg{Data: []byte("not json")})
	assert.Contains(t, store.values, "b")
}
