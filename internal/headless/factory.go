// Package headless provides attribute tables and instance collections that load everything a renderer
// would need without drawing anything. Used by the command line tools and for server side validation.
package headless

import (
	"github.com/ecopia-map/cesium_instancer/internal/content"
	"github.com/ecopia-map/cesium_instancer/internal/fetch"
)

type Factory struct {
	load fetch.LoadFunc
}

// load fetches the meshes referenced by URL
func NewFactory(load fetch.LoadFunc) *Factory {
	return &Factory{load: load}
}

func (f *Factory) NewAttributeTable(c *content.Content, instanceCount int) (content.AttributeTable, error) {
	return NewAttributeTable(c, instanceCount), nil
}

func (f *Factory) NewInstanceCollection(options content.CollectionOptions) (content.InstanceCollection, error) {
	collection, err := NewInstanceCollection(options, f.load)
	if err != nil {
		return nil, err
	}
	return collection, nil
}
