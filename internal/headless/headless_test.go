package headless

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ecopia-map/cesium_instancer/internal/content"
	"github.com/ecopia-map/cesium_instancer/internal/future"
	"github.com/ecopia-map/cesium_instancer/internal/i3dm"
	"github.com/ecopia-map/cesium_instancer/internal/placement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	glb  = []byte("glTF\x02\x00\x00\x00\x0c\x00\x00\x00")
	gltf = []byte(` {"asset": {"version": "2.0"}, "meshes": []}`)
)

func wait(t *testing.T, f *future.Future[struct{}]) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.Await(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return err
}

func TestInspectMesh(t *testing.T) {
	info, err := inspectMesh(glb)
	require.NoError(t, err)
	assert.Equal(t, MeshInfo{Binary: true, Version: "2.0", ByteLength: 12}, *info)

	info, err = inspectMesh(gltf)
	require.NoError(t, err)
	assert.False(t, info.Binary)
	assert.Equal(t, "2.0", info.Version)

	tests := map[string][]byte{
		"Empty":          {},
		"ShortGLB":       []byte("glTF\x02"),
		"GLBVersion":     []byte("glTF\x07\x00\x00\x00\x0c\x00\x00\x00"),
		"NotJSONObject":  []byte(`["asset"]`),
		"MissingVersion": []byte(`{"asset": {}}`),
		"BrokenJSON":     []byte(`{"asset": `),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := inspectMesh(data)
			assert.ErrorIs(t, err, ErrUnsupportedMesh)
		})
	}
}

func TestEmbeddedCollection(t *testing.T) {
	instances := []placement.Instance{{ID: 3}, {ID: 4}}
	collection, err := NewInstanceCollection(content.CollectionOptions{
		Instances: instances,
		Mesh:      content.MeshSource{Embedded: glb},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, wait(t, collection.Ready()))

	assert.True(t, collection.Mesh().Binary)
	assert.Equal(t, instances, collection.Instances())

	require.NoError(t, collection.Update(content.FrameState{FrameNumber: 1}))
	assert.Equal(t, uint64(1), collection.Frames())

	collection.Destroy()
	assert.ErrorIs(t, collection.Update(content.FrameState{}), content.ErrDestroyed)
}

func TestFetchedCollection(t *testing.T) {
	var requested string
	load := func(_ context.Context, url string) ([]byte, error) {
		requested = url
		return gltf, nil
	}
	collection, err := NewInstanceCollection(content.CollectionOptions{
		Mesh: content.MeshSource{URL: "http://host/tree.gltf"},
	}, load)
	require.NoError(t, err)
	require.NoError(t, wait(t, collection.Ready()))
	assert.Equal(t, "http://host/tree.gltf", requested)
	assert.Equal(t, "2.0", collection.Mesh().Version)
}

func TestFetchedCollectionFailure(t *testing.T) {
	notFound := errors.New("404")
	collection, err := NewInstanceCollection(content.CollectionOptions{
		Mesh: content.MeshSource{URL: "http://host/tree.gltf"},
	}, func(context.Context, string) ([]byte, error) { return nil, notFound })
	require.NoError(t, err)
	assert.ErrorIs(t, wait(t, collection.Ready()), notFound)
	assert.Nil(t, collection.Mesh())
}

func TestCollectionWithoutMesh(t *testing.T) {
	_, err := NewInstanceCollection(content.CollectionOptions{}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedMesh)

	_, err = NewInstanceCollection(content.CollectionOptions{Mesh: content.MeshSource{URL: "tree.glb"}}, nil)
	assert.Error(t, err)
}

func TestAttributeTable(t *testing.T) {
	table := NewAttributeTable(nil, 2)
	assert.Empty(t, table.Document())

	table.SetDocument(i3dm.Document{"height": json.RawMessage(`[1,2]`)})
	assert.Contains(t, table.Document(), "height")
	table.SetDocument(nil)
	assert.NotNil(t, table.Document())
	assert.Equal(t, 2, table.InstanceCount())

	require.NoError(t, table.Update(content.FrameState{}))
	assert.Equal(t, uint64(1), table.Frames())

	table.Destroy()
	assert.ErrorIs(t, table.Update(content.FrameState{}), content.ErrDestroyed)
}
