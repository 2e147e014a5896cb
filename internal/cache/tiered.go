package cache

import (
	"context"
	"errors"

	"github.com/ecopia-map/cesium_instancer/internal/metrics"
	"github.com/golang/glog"
)

// Tiered looks up stores in order, fastest first. A hit in a slower store is copied into the faster ones.
type Tiered struct {
	stores  []Store
	metrics *metrics.Metrics
}

func NewTiered(m *metrics.Metrics, stores ...Store) *Tiered {
	return &Tiered{stores: stores, metrics: m}
}

func (t *Tiered) Name() string {
	return "tiered"
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, error) {
	for i, store := range t.stores {
		value, err := store.Get(ctx, key)
		if errors.Is(err, ErrCacheMiss) {
			t.metrics.ObserveCacheLookup(store.Name(), false)
			continue
		}
		if err != nil {
			// a broken store is treated as a miss, the payload can still be fetched
			glog.Warningf("cache %s lookup of %s failed: %v", store.Name(), key, err)
			continue
		}
		t.metrics.ObserveCacheLookup(store.Name(), true)
		for _, faster := range t.stores[:i] {
			if err := faster.Set(ctx, key, value); err != nil {
				glog.Warningf("cache %s backfill of %s failed: %v", faster.Name(), key, err)
			}
		}
		return value, nil
	}
	return nil, ErrCacheMiss
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte) error {
	var errs []error
	for _, store := range t.stores {
		if err := store.Set(ctx, key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, store := range t.stores {
		if err := store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Tiered) Close() error {
	var errs []error
	for _, store := range t.stores {
		if err := store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
