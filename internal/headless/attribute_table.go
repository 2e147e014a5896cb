package headless

import (
	"sync"

	"github.com/ecopia-map/cesium_instancer/internal/content"
	"github.com/ecopia-map/cesium_instancer/internal/i3dm"
)

// AttributeTable keeps the per-instance properties of a content in memory
type AttributeTable struct {
	content       *content.Content
	instanceCount int

	mu        sync.RWMutex
	document  i3dm.Document
	frames    uint64
	destroyed bool
}

func NewAttributeTable(c *content.Content, instanceCount int) *AttributeTable {
	return &AttributeTable{content: c, instanceCount: instanceCount, document: i3dm.Document{}}
}

func (t *AttributeTable) Content() *content.Content {
	return t.content
}

func (t *AttributeTable) InstanceCount() int {
	return t.instanceCount
}

func (t *AttributeTable) Document() i3dm.Document {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.document
}

// A nil document leaves the table empty
func (t *AttributeTable) SetDocument(document i3dm.Document) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if document == nil {
		document = i3dm.Document{}
	}
	t.document = document
}

func (t *AttributeTable) Update(content.FrameState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return content.ErrDestroyed
	}
	t.frames++
	return nil
}

// Number of frames the table was updated for
func (t *AttributeTable) Frames() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frames
}

func (t *AttributeTable) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.destroyed = true
	t.document = i3dm.Document{}
}
