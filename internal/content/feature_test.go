package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModelBeforeLoad(t *testing.T) {
	f := newFixture(t)

	_, err := f.content.GetModel(0)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Nil(t, f.content.features)
}

func TestGetModelBounds(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.load(t, testPayload(t)))

	for _, index := range []int{-1, 2, 100} {
		feature, err := f.content.GetModel(index)
		assert.ErrorIs(t, err, ErrInvalidArgument, "index %d", index)
		assert.Nil(t, feature)
	}
	assert.Nil(t, f.content.features)
	assert.Equal(t, 0, f.content.featureAllocations)
}

func TestGetModelAllocatesOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.load(t, testPayload(t)))

	first, err := f.content.GetModel(1)
	require.NoError(t, err)
	again, err := f.content.GetModel(1)
	require.NoError(t, err)
	other, err := f.content.GetModel(0)
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Len(t, f.content.features, 2)
	assert.Equal(t, 1, f.content.featureAllocations)

	assert.Equal(t, 1, first.Index())
	assert.Equal(t, 0, other.Index())
	assert.Same(t, f.content, first.Content())
}

func TestModelFeatureProperties(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.load(t, testPayload(t)))

	feature, err := f.content.GetModel(1)
	require.NoError(t, err)

	assert.Equal(t, []string{"height", "name"}, feature.GetPropertyNames())

	raw, ok := feature.GetProperty("name")
	require.True(t, ok)
	var name string
	require.NoError(t, json.Unmarshal(raw, &name))
	assert.Equal(t, "pine", name)

	raw, ok = feature.GetProperty("height")
	require.True(t, ok)
	assert.JSONEq(t, "20", string(raw))

	_, ok = feature.GetProperty("missing")
	assert.False(t, ok)
}

func TestModelFeatureNonArrayProperty(t *testing.T) {
	feature := &ModelFeature{table: &fakeTable{document: map[string]json.RawMessage{
		"scalar": json.RawMessage(`5`),
		"short":  json.RawMessage(`[1]`),
	}}, index: 1}

	_, ok := feature.GetProperty("scalar")
	assert.False(t, ok)
	_, ok = feature.GetProperty("short")
	assert.False(t, ok)
}

func TestGetModelAfterDestroy(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.load(t, testPayload(t)))
	f.content.Destroy()

	_, err := f.content.GetModel(0)
	assert.ErrorIs(t, err, ErrDestroyed)
}
