package frontmatter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Metadata is an ordered key/value mapping. Key order from the source
// document is kept so that rewriting a block does not shuffle fields.
type Metadata struct {
	keys   []string
	values map[string]any
	// nodes holds the parsed YAML node of untouched values so their
	// original style survives a rewrite.
	nodes map[string]*yaml.Node
}

// NewMetadata returns an empty mapping.
func NewMetadata() *Metadata {
	return &Metadata{values: map[string]any{}, nodes: map[string]*yaml.Node{}}
}

func (m *Metadata) init() {
	if m.values == nil {
		m.values = map[string]any{}
	}
	if m.nodes == nil {
		m.nodes = map[string]*yaml.Node{}
	}
}

// Has reports whether key is present (even with a null value).
func (m *Metadata) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[key]
	return ok
}

// Get returns the value for key.
func (m *Metadata) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// String returns the value for key when it is a string.
func (m *Metadata) String(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Strings returns the string elements of a sequence value. A scalar string
// is returned as a one-element slice; other scalars yield nil.
func (m *Metadata) Strings(key string) []string {
	v, ok := m.Get(key)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return nil
}

// Set stores value under key, appending the key when new.
func (m *Metadata) Set(key string, value any) {
	m.init()
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	delete(m.nodes, key)
}

// Delete removes key.
func (m *Metadata) Delete(key string) {
	if !m.Has(key) {
		return
	}
	delete(m.values, key)
	delete(m.nodes, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in document order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Map returns an unordered copy of the values.
func (m *Metadata) Map() map[string]any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// UnmarshalYAML implements yaml.Unmarshaler. The node must be a mapping.
func (m *Metadata) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("metadata must be a mapping, got %s", kindName(node.Kind))
	}
	m.keys = nil
	m.values = map[string]any{}
	m.nodes = map[string]*yaml.Node{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var key string
		if err := keyNode.Decode(&key); err != nil {
			return fmt.Errorf("line %d: metadata key: %w", keyNode.Line, err)
		}
		var val any
		if err := valNode.Decode(&val); err != nil {
			return fmt.Errorf("line %d: value of %q: %w", valNode.Line, key, err)
		}
		if _, dup := m.values[key]; !dup {
			m.keys = append(m.keys, key)
		}
		m.values[key] = val
		m.nodes[key] = valNode
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m *Metadata) MarshalYAML() (any, error) {
	out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if m == nil {
		return out, nil
	}
	for _, k := range m.keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valNode, ok := m.nodes[k]
		if !ok {
			valNode = &yaml.Node{}
			if err := valNode.Encode(m.values[k]); err != nil {
				return nil, fmt.Errorf("encode %q: %w", k, err)
			}
		}
		out.Content = append(out.Content, keyNode, valNode)
	}
	return out, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "document"
	}
}
