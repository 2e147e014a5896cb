package pkg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecopia-map/cesium_instancer/internal/cache"
	"github.com/ecopia-map/cesium_instancer/internal/content"
	"github.com/ecopia-map/cesium_instancer/internal/fetch"
	"github.com/ecopia-map/cesium_instancer/internal/headless"
	"github.com/ecopia-map/cesium_instancer/internal/io"
	"github.com/ecopia-map/cesium_instancer/internal/loader"
	"github.com/ecopia-map/cesium_instancer/internal/metrics"
	"github.com/ecopia-map/cesium_instancer/pkg/algorithm_manager"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const requestRetryInterval = 10 * time.Millisecond

type ILoader interface {
	NewContent(url string, tile content.Tile) *content.Content
	Load(ctx context.Context, url string, tile content.Tile) (*content.Content, error)
	LoadAll(ctx context.Context, urls []string, tile content.Tile) ([]*content.Content, error)
	Invalidate(ctx context.Context, url string) error
	Close() error
}

// Loader wires the request throttle, the fetcher with its caches and the headless resources into the
// contents it creates
type Loader struct {
	options          *loader.LoaderOptions
	algorithmManager algorithm_manager.AlgorithmManager
	metrics          *metrics.Metrics
	store            cache.Store
	invalidator      *cache.Invalidator
	producer         io.Producer
	deps             content.Dependencies
}

// Builds a loader. reg receives the loader metrics, nil disables them.
func NewLoader(opts *loader.LoaderOptions, algorithmManager algorithm_manager.AlgorithmManager, reg prometheus.Registerer) (ILoader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	l := &Loader{
		options:          opts,
		algorithmManager: algorithmManager,
		metrics:          metrics.New(reg),
	}

	if err := l.openCache(); err != nil {
		return nil, err
	}

	fetchOptions := []fetch.Option{fetch.WithMetrics(l.metrics), fetch.WithTimeout(opts.RequestTimeout)}
	if l.store != nil {
		fetchOptions = append(fetchOptions, fetch.WithCache(l.store))
	}
	fetcher := fetch.NewFetcher(fetchOptions...)

	l.producer = io.NewStandardProducer(opts.MaxRequests, opts.Workers, l.metrics)
	l.deps = content.Dependencies{
		Throttle:  l.producer,
		Load:      fetcher.Load,
		Factory:   headless.NewFactory(fetcher.Load),
		Placement: algorithmManager.GetPlacementAlgorithm(),
		Metrics:   l.metrics,
	}

	glog.Infof("loader ready: converter %s, %d request slots, %d workers", opts.Converter, opts.MaxRequests, opts.Workers)
	return l, nil
}

func (l *Loader) openCache() error {
	cfg := l.options.Cache
	if !cfg.Enabled() {
		return nil
	}

	var stores []cache.Store
	if cfg.Dir != "" {
		store, err := cache.NewBadgerStore(cfg.Dir, cfg.TTL)
		if err != nil {
			return err
		}
		stores = append(stores, store)
	}
	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.TTL)
		if err != nil {
			_ = cache.NewTiered(nil, stores...).Close()
			return err
		}
		stores = append(stores, store)
	}
	l.store = cache.NewTiered(l.metrics, stores...)

	if cfg.NATSURL != "" {
		invalidator, err := cache.NewInvalidator(cfg.NATSURL, cfg.NATSSubject, uuid.NewString(), l.store)
		if err != nil {
			_ = l.store.Close()
			return err
		}
		l.invalidator = invalidator
	}
	return nil
}

// Creates an unloaded content. Relative mesh uris resolve against the configured base url, or against
// the content url itself when none is configured.
func (l *Loader) NewContent(url string, tile content.Tile) *content.Content {
	var tileset content.Tileset = staticTileset(url)
	if l.options.BaseURL != "" {
		tileset = staticTileset(l.options.BaseURL)
	}
	return content.New(url, tileset, tile, l.deps)
}

// Loads the content at url, waiting for a request slot, and returns it once ready
func (l *Loader) Load(ctx context.Context, url string, tile content.Tile) (*content.Content, error) {
	c := l.NewContent(url, tile)
	if err := l.request(ctx, c); err != nil {
		c.Destroy()
		return nil, err
	}
	if _, err := c.Ready().Await(ctx); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (l *Loader) request(ctx context.Context, c *content.Content) error {
	ticker := time.NewTicker(requestRetryInterval)
	defer ticker.Stop()

	for {
		granted, err := c.Request(ctx)
		if err != nil {
			return err
		}
		if granted {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Loads every url. On the first failure the contents loaded so far are destroyed.
func (l *Loader) LoadAll(ctx context.Context, urls []string, tile content.Tile) ([]*content.Content, error) {
	contents := make([]*content.Content, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.options.MaxRequests)
	for i, url := range urls {
		g.Go(func() error {
			c, err := l.Load(gctx, url, tile)
			if err != nil {
				return fmt.Errorf("%s: %w", url, err)
			}
			contents[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, c := range contents {
			if c != nil {
				c.Destroy()
			}
		}
		return nil, err
	}
	return contents, nil
}

// Drops the cached payload of url, on every loader sharing the invalidation subject
func (l *Loader) Invalidate(ctx context.Context, url string) error {
	if l.invalidator != nil {
		return l.invalidator.Invalidate(ctx, url)
	}
	if l.store != nil {
		return l.store.Delete(ctx, url)
	}
	return nil
}

func (l *Loader) Close() error {
	l.producer.Close()

	var errs []error
	if l.invalidator != nil {
		errs = append(errs, l.invalidator.Close())
	}
	if l.store != nil {
		errs = append(errs, l.store.Close())
	}
	l.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()
	return errors.Join(errs...)
}
