package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, elem ...string) string {
	t.Helper()
	filePath := filepath.Join(elem...)
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0777))
	require.NoError(t, os.WriteFile(filePath, nil, 0666))
	return filePath
}

func TestGetTilesFromFolder(t *testing.T) {
	dir := t.TempDir()
	top := touch(t, dir, "a.i3dm")
	upper := touch(t, dir, "B.I3DM")
	touch(t, dir, "tree.glb")
	nested := touch(t, dir, "nested", "c.i3dm")

	finder := NewStandardFileFinder()

	tiles, err := finder.GetTilesToProcess(dir, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{top, upper}, tiles)

	tiles, err = finder.GetTilesToProcess(dir, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{top, upper, nested}, tiles)
}

func TestGetTilesSingleInput(t *testing.T) {
	finder := NewStandardFileFinder()

	tile := touch(t, t.TempDir(), "single.bin")
	tiles, err := finder.GetTilesToProcess(tile, true)
	require.NoError(t, err)
	assert.Equal(t, []string{tile}, tiles)

	tiles, err = finder.GetTilesToProcess("https://example.com/tiles/0.i3dm", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/tiles/0.i3dm"}, tiles)

	_, err = finder.GetTilesToProcess(filepath.Join(t.TempDir(), "missing"), false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
