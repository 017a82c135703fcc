package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LegacyNextVersionFile is the old way of pinning the next version.
const LegacyNextVersionFile = "NextVersion.txt"

// DefaultConfigFiles are searched, in order, in the working directory.
var DefaultConfigFiles = []string{
	"GitVersion.yml",
	"GitVersion.yaml",
	".GitVersion.yml",
	".GitVersion.yaml",
	"gitversion.yml",
	"gitversion.yaml",
	filepath.Join(".github", "GitVersion.yml"),
}

// LoadFromFile reads and decodes a configuration file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes decodes YAML. Unknown keys are rejected so typos surface
// instead of silently falling back to defaults.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, &Error{Err: fmt.Errorf("parsing: %w", err)}
	}
	return &cfg, nil
}

// FindConfigFile returns the first default config file present in dir, or
// "" when there is none.
func FindConfigFile(dir string) string {
	for _, name := range DefaultConfigFiles {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// LoadLegacyNextVersion returns the trimmed content of NextVersion.txt in
// dir, or "" if the file does not exist.
func LoadLegacyNextVersion(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, LegacyNextVersionFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", LegacyNextVersionFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}
