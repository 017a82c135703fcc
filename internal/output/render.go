package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how WriteVariables renders the variables.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatEnv writes one NAME=value line per variable.
	FormatEnv Format = "env"
)

// ParseFormat accepts json, yaml (or yml) and env, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "env":
		return FormatEnv, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json, yaml or env)", s)
}

// WriteVariables renders all variables in the given format.
func WriteVariables(w io.Writer, vars VersionVariables, format Format) error {
	switch format {
	case FormatYAML:
		return WriteYAML(w, vars)
	case FormatEnv:
		return WriteEnv(w, vars)
	default:
		return WriteJSON(w, vars)
	}
}

// WriteJSON writes all variables as pretty-printed JSON to the writer.
func WriteJSON(w io.Writer, vars VersionVariables) error {
	data, err := json.MarshalIndent(vars, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling variables to JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON output: %w", err)
	}
	return nil
}

// WriteYAML writes all variables as a YAML mapping, keys sorted.
func WriteYAML(w io.Writer, vars VersionVariables) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]string(vars)); err != nil {
		return fmt.Errorf("writing YAML output: %w", err)
	}
	return enc.Close()
}

// WriteEnv writes all variables as NAME=value pairs, sorted by name.
func WriteEnv(w io.Writer, vars VersionVariables) error {
	for _, k := range vars.Names() {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, vars[k]); err != nil {
			return err
		}
	}
	return nil
}

// WriteVariable writes a single variable value to the writer.
func WriteVariable(w io.Writer, vars VersionVariables, name string) error {
	val, ok := vars[name]
	if !ok {
		return fmt.Errorf("unknown variable %q", name)
	}
	_, err := fmt.Fprintln(w, val)
	return err
}
