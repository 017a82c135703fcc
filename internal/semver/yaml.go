package semver

import "gopkg.in/yaml.v3"

func decodeEnum[T ~int](node *yaml.Node, parse func(string) (T, error), out *T) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := parse(s)
	if err != nil {
		return err
	}
	*out = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *VersioningMode) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseVersioningMode, m)
}

// MarshalYAML implements yaml.Marshaler.
func (m VersioningMode) MarshalYAML() (any, error) { return m.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *IncrementStrategy) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseIncrementStrategy, s)
}

// MarshalYAML implements yaml.Marshaler.
func (s IncrementStrategy) MarshalYAML() (any, error) { return s.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *CommitMessageIncrementMode) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseCommitMessageIncrementMode, m)
}

// MarshalYAML implements yaml.Marshaler.
func (m CommitMessageIncrementMode) MarshalYAML() (any, error) { return m.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *CommitMessageConvention) UnmarshalYAML(node *yaml.Node) error {
	return decodeEnum(node, ParseCommitMessageConvention, c)
}

// MarshalYAML implements yaml.Marshaler.
func (c CommitMessageConvention) MarshalYAML() (any, error) { return c.String(), nil }
