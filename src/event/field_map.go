package event

import "sort"

// FieldMap maps source field names to canonical field names. Entries keep
// their insertion position; setting an existing source field only replaces
// its target, so "later override wins" holds without reordering.
type FieldMap struct {
	order   []string
	targets map[string]string
}

func NewFieldMap() *FieldMap {
	return &FieldMap{targets: make(map[string]string)}
}

// Insert-or-overwrite a single mapping entry.
func (m *FieldMap) Set(source, target string) {
	if _, ok := m.targets[source]; !ok {
		m.order = append(m.order, source)
	}
	m.targets[source] = target
}

// Merge a plain map of mappings. New source fields are inserted in sorted
// order to keep iteration deterministic across runs.
func (m *FieldMap) Merge(mappings map[string]string) {
	sources := make([]string, 0, len(mappings))
	for source := range mappings {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		m.Set(source, mappings[source])
	}
}

func (m *FieldMap) Len() int {
	return len(m.order)
}

// Iterate over the mapping entries in insertion order and apply a function
// to each.
func (m *FieldMap) Each(fn func(source, target string)) {
	for _, source := range m.order {
		fn(source, m.targets[source])
	}
}
