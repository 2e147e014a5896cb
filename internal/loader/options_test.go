package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecopia-map/cesium_instancer/internal/cache"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), "loader.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0666))
	return filePath
}

func TestLoadOptions(t *testing.T) {
	filePath := writeConfig(t, `
base_url: http://host/tiles/tileset.json
max_requests: 4
height_offset: 12.5
converter: proj4
request_timeout: 5s
cache:
  dir: /var/cache/i3dm
  redis_addr: localhost:6379
  redis_db: 2
  ttl: 1h
  nats_url: nats://localhost:4222
metrics_addr: ":2112"
`)

	opts, err := LoadOptions(filePath)
	require.NoError(t, err)

	expected := &LoaderOptions{
		BaseURL:      "http://host/tiles/tileset.json",
		MaxRequests:  4,
		Workers:      8,
		HeightOffset: 12.5,
		Converter:    ConverterProj4,
		Cache: cache.Config{
			Dir:       "/var/cache/i3dm",
			RedisAddr: "localhost:6379",
			RedisDB:   2,
			TTL:       time.Hour,
			NATSURL:   "nats://localhost:4222",
		},
		MetricsAddr:    ":2112",
		RequestTimeout: 5 * time.Second,
	}
	if diff := cmp.Diff(expected, opts); diff != "" {
		t.Errorf("unexpected options (-want +got):\n%s", diff)
	}
}

func TestLoadOptionsDefaults(t *testing.T) {
	opts, err := LoadOptions(writeConfig(t, "{}"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
	assert.False(t, opts.Cache.Enabled())
	assert.Zero(t, opts.HeightOffset)
}

func TestLoadOptionsMissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOptionsMalformed(t *testing.T) {
	_, err := LoadOptions(writeConfig(t, "max_requests: [1, 2"))
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(opts *LoaderOptions)
	}{
		{"Converter", func(opts *LoaderOptions) { opts.Converter = "mercator" }},
		{"MaxRequests", func(opts *LoaderOptions) { opts.MaxRequests = 0 }},
		{"Workers", func(opts *LoaderOptions) { opts.Workers = -1 }},
		{"RequestTimeout", func(opts *LoaderOptions) { opts.RequestTimeout = -time.Second }},
		{"CacheTTL", func(opts *LoaderOptions) { opts.Cache.TTL = -time.Second }},
		{"InvalidationWithoutStore", func(opts *LoaderOptions) { opts.Cache.NATSURL = "nats://localhost:4222" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(opts)
			assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)
		})
	}
}

func TestParseConverter(t *testing.T) {
	assert.Equal(t, ConverterEllipsoid, ParseConverter(" ellipsoid "))
	assert.Equal(t, ConverterProj4, ParseConverter("Proj4"))
	assert.Equal(t, Converter(""), ParseConverter("utm"))
	assert.Equal(t, "PROJ4", ConverterProj4.String())
}

func TestCopy(t *testing.T) {
	opts := DefaultOptions()
	copied := opts.Copy()
	copied.MaxRequests = 1
	assert.Equal(t, 50, opts.MaxRequests)
}
