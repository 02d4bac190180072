package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Row is one dictionary table row. The key order of the document is kept so
// that columns are created in the order they were written.
type Row struct {
	Keys   []string
	Values map[string]any
}

// NewRow builds a row from alternating keys and values.
func NewRow(kv ...any) Row {
	r := Row{Values: make(map[string]any, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		if _, ok := r.Values[k]; !ok {
			r.Keys = append(r.Keys, k)
		}
		r.Values[k] = kv[i+1]
	}
	return r
}

func (r *Row) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: dictionary row must be a mapping", n.Line)
	}

	r.Keys = make([]string, 0, len(n.Content)/2)
	r.Values = make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		var v any
		if err := n.Content[i+1].Decode(&v); err != nil {
			return err
		}
		if _, dup := r.Values[key]; dup {
			return fmt.Errorf("line %d: duplicate column %q", n.Content[i].Line, key)
		}
		r.Keys = append(r.Keys, key)
		r.Values[key] = v
	}
	return nil
}
