package content

import (
	"encoding/json"
	"sort"
)

// ModelFeature is the handle of a single instance, bound to the attribute table of its content
type ModelFeature struct {
	content *Content
	table   AttributeTable
	index   int
}

func (f *ModelFeature) Content() *Content {
	return f.content
}

func (f *ModelFeature) Index() int {
	return f.index
}

// Returns the element of the named per-instance array at the feature index. The second value is false
// when the property is missing, is not an array or is too short.
func (f *ModelFeature) GetProperty(name string) (json.RawMessage, bool) {
	if f.table == nil {
		return nil, false
	}
	raw, ok := f.table.Document()[name]
	if !ok {
		return nil, false
	}
	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	if f.index >= len(values) {
		return nil, false
	}
	return values[f.index], true
}

func (f *ModelFeature) GetPropertyNames() []string {
	if f.table == nil {
		return nil
	}
	document := f.table.Document()
	names := make([]string, 0, len(document))
	for name := range document {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
