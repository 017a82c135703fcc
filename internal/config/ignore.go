package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// IgnoreConfig excludes commits from version calculation.
type IgnoreConfig struct {
	CommitsBefore *time.Time `yaml:"commits-before,omitempty"`
	Sha           []string   `yaml:"sha,omitempty"`
}

// IsEmpty is true when nothing is ignored.
func (c IgnoreConfig) IsEmpty() bool {
	return c.CommitsBefore == nil && len(c.Sha) == 0
}

// IsZero lets yaml omit an empty block.
func (c IgnoreConfig) IsZero() bool { return c.IsEmpty() }

// Excludes reports whether a commit with the given sha and time is ignored.
// Sha entries may be abbreviated.
func (c IgnoreConfig) Excludes(sha string, when time.Time) bool {
	if c.CommitsBefore != nil && when.Before(*c.CommitsBefore) {
		return true
	}
	return slices.ContainsFunc(c.Sha, func(s string) bool {
		return s != "" && strings.HasPrefix(sha, s)
	})
}

var ignoreDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// UnmarshalYAML accepts RFC3339 timestamps and plain dates for commits-before.
func (c *IgnoreConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		CommitsBefore *string  `yaml:"commits-before"`
		Sha           []string `yaml:"sha"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Sha = raw.Sha
	if raw.CommitsBefore == nil {
		return nil
	}
	for _, layout := range ignoreDateLayouts {
		if t, err := time.Parse(layout, *raw.CommitsBefore); err == nil {
			c.CommitsBefore = &t
			return nil
		}
	}
	return fmt.Errorf("cannot parse commits-before %q: expected RFC3339 or YYYY-MM-DD", *raw.CommitsBefore)
}
