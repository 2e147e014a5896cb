// Package fetch loads tile payloads and meshes from the file system or over http, inflating compressed
// payloads and reading through an optional cache.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/ecopia-map/cesium_instancer/internal/cache"
	"github.com/ecopia-map/cesium_instancer/internal/metrics"
	"github.com/golang/glog"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrFetch = errors.New("fetch failed")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// LoadFunc retrieves the bytes of a resource
type LoadFunc func(ctx context.Context, url string) ([]byte, error)

type Fetcher struct {
	client  *http.Client
	store   cache.Store
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(f *Fetcher)

func WithCache(store cache.Store) Option {
	return func(f *Fetcher) {
		f.store = store
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = timeout
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{},
		tracer: otel.Tracer("github.com/ecopia-map/cesium_instancer/internal/fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load returns the inflated bytes of the resource. Failures wrap ErrFetch.
func (f *Fetcher) Load(ctx context.Context, resource string) ([]byte, error) {
	ctx, span := f.tracer.Start(ctx, "fetch.Load", trace.WithAttributes(attribute.String("resource", resource)))
	defer span.End()

	data, err := f.load(ctx, resource)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("bytes", len(data)))
	return data, nil
}

func (f *Fetcher) load(ctx context.Context, resource string) ([]byte, error) {
	if f.store != nil {
		data, err := f.store.Get(ctx, resource)
		if err == nil {
			glog.V(2).Infof("cache hit for %s", resource)
			return data, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			glog.Warningf("cache lookup of %s failed: %v", resource, err)
		}
	}

	raw, err := f.read(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, resource, err)
	}
	f.metrics.ObserveFetch(len(raw))

	data, err := Inflate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, resource, err)
	}

	if f.store != nil {
		if err := f.store.Set(ctx, resource, data); err != nil {
			glog.Warningf("unable to cache %s: %v", resource, err)
		}
	}
	return data, nil
}

func (f *Fetcher) read(ctx context.Context, resource string) ([]byte, error) {
	u, err := url.Parse(resource)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https":
		return f.get(ctx, resource)
	case "file":
		return os.ReadFile(u.Path)
	case "":
		return os.ReadFile(resource)
	}
	return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
}

func (f *Fetcher) get(ctx context.Context, resource string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Inflate decompresses gzip and zstd payloads, other payloads are returned as they are
func Inflate(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case bytes.HasPrefix(data, zstdMagic):
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer decoder.Close()
		return decoder.DecodeAll(data, nil)
	}
	return data, nil
}

// ResolveURL resolves ref against base. Bases with a scheme follow url reference resolution, plain paths
// are joined relative to the directory of base.
func ResolveURL(base, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", ref, err)
	}
	if base == "" || r.IsAbs() || path.IsAbs(ref) {
		return ref, nil
	}

	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}
	if b.Scheme != "" {
		return b.ResolveReference(r).String(), nil
	}
	dir := base
	if !strings.HasSuffix(base, "/") {
		dir = path.Dir(base)
	}
	return path.Join(dir, ref), nil
}
