package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseOverrides turns "key=value" pairs into a configuration layer. Keys
// use the file's names, with dots reaching into nested mappings:
//
//	mode=Mainline
//	branches.feature.label=wip
//
// Values are YAML scalars, so numbers and booleans decode like they do in
// a file. Unknown keys are rejected.
func ParseOverrides(pairs []string) (*Config, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &Error{Key: pair, Err: errors.New("override must have the form key=value")}
		}
		if err := setPath(root, strings.Split(key, "."), strings.TrimSpace(value)); err != nil {
			return nil, &Error{Key: key, Err: err}
		}
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("encoding overrides: %w", err)
	}
	return LoadFromBytes(data)
}

func setPath(node *yaml.Node, path []string, value string) error {
	for i, segment := range path {
		if segment == "" {
			return errors.New("empty key segment")
		}
		idx := mappingValue(node, segment)
		last := i == len(path)-1
		switch {
		case idx < 0 && last:
			node.Content = append(node.Content, keyNode(segment), valueNode(value))
			return nil
		case idx < 0:
			child := &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, keyNode(segment), child)
			node = child
		case last:
			if node.Content[idx].Kind == yaml.MappingNode {
				return fmt.Errorf("%s already holds nested keys", segment)
			}
			node.Content[idx] = valueNode(value)
			return nil
		case node.Content[idx].Kind != yaml.MappingNode:
			return fmt.Errorf("%s is already set to a value", segment)
		default:
			node = node.Content[idx]
		}
	}
	return nil
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: key}
}

// valueNode parses value as YAML, so "[a, b]" becomes a sequence. Anything
// that does not parse is taken as a string.
func valueNode(value string) *yaml.Node {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(value), &doc); err == nil && len(doc.Content) == 1 {
		return doc.Content[0]
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// mappingValue returns the index of key's value in node, or -1.
func mappingValue(node *yaml.Node, key string) int {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return i + 1
		}
	}
	return -1
}
