package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// fallbackBranch is the catch-all entry; it is always matched last.
const fallbackBranch = "unknown"

// NamedBranch pairs a configuration key with its branch settings.
type NamedBranch struct {
	Name   string
	Config *BranchConfig
}

// Branches is the branch configuration in declaration order. A YAML mapping
// decodes into it without losing the order keys were written in, because
// the first matching regex wins.
type Branches []NamedBranch

// Get returns the entry named name.
func (b Branches) Get(name string) (*BranchConfig, bool) {
	for _, nb := range b {
		if nb.Name == name {
			return nb.Config, true
		}
	}
	return nil, false
}

// Names lists the keys in order.
func (b Branches) Names() []string {
	out := make([]string, len(b))
	for i, nb := range b {
		out[i] = nb.Name
	}
	return out
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Branches) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: branches must be a mapping", node.Line)
	}
	out := make(Branches, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		bc := &BranchConfig{}
		if err := value.Decode(bc); err != nil {
			return fmt.Errorf("branch %q: %w", key.Value, err)
		}
		if _, dup := out.Get(key.Value); dup {
			return fmt.Errorf("line %d: branch %q declared twice", key.Line, key.Value)
		}
		out = append(out, NamedBranch{Name: key.Value, Config: bc})
	}
	*b = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b Branches) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, nb := range b {
		var value yaml.Node
		if err := value.Encode(nb.Config); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: nb.Name},
			&value)
	}
	return node, nil
}

// overlayBranches merges src onto dst. Entries src names come first in the
// order src declares them, followed by the dst entries src left alone. The
// catch-all entry is kept at the end.
func overlayBranches(dst, src Branches) Branches {
	if len(src) == 0 {
		return dst
	}
	out := make(Branches, 0, len(dst)+len(src))
	seen := make(map[string]bool, len(src))
	for _, s := range src {
		merged := s.Config.Clone()
		if existing, ok := dst.Get(s.Name); ok {
			merged = existing.Clone()
			s.Config.MergeTo(merged)
		}
		out = append(out, NamedBranch{Name: s.Name, Config: merged})
		seen[s.Name] = true
	}
	for _, d := range dst {
		if !seen[d.Name] {
			out = append(out, d)
		}
	}
	return moveFallbackLast(out)
}

func moveFallbackLast(b Branches) Branches {
	for i, nb := range b {
		if nb.Name == fallbackBranch && i != len(b)-1 {
			rest := append(append(Branches{}, b[:i]...), b[i+1:]...)
			return append(rest, nb)
		}
	}
	return b
}
