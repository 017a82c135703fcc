// Package output turns a calculated version into output variables and
// renders them as JSON, YAML, env lines or a decision trace.
package output

import (
	"maps"
	"slices"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/calculator"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// VersionVariables holds every output variable by name.
type VersionVariables map[string]string

// GetVariables computes the output variables of ver with the presentation
// settings of ec.
func GetVariables(ver semver.SemanticVersion, ec config.EffectiveConfiguration) VersionVariables {
	return semver.ComputeFormatValues(ver, ec.FormatConfig())
}

// FromResult computes the output variables of a calculation.
func FromResult(r calculator.VersionResult) VersionVariables {
	return GetVariables(r.Version, r.EffectiveConfiguration)
}

// Names returns the variable names, sorted.
func (v VersionVariables) Names() []string {
	return slices.Sorted(maps.Keys(v))
}
