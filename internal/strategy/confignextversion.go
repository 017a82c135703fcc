package strategy

import (
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/context"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// ConfigNextVersionStrategy proposes the version pinned by next-version, or
// by a NextVersion.txt next to the repository. Setting both is an error. A
// pinned version has no anchor and is not incremented.
type ConfigNextVersionStrategy struct {
	legacy string
}

func NewConfigNextVersionStrategy(legacyNextVersion string) *ConfigNextVersionStrategy {
	return &ConfigNextVersionStrategy{legacy: legacyNextVersion}
}

func (s *ConfigNextVersionStrategy) Name() string { return "ConfigNextVersion" }

// pinned returns the configured value and where it came from.
func (s *ConfigNextVersionStrategy) pinned(ec config.EffectiveConfiguration) (value, source string, err error) {
	switch {
	case ec.NextVersion != "" && s.legacy != "":
		return "", "", &config.Error{Key: "next-version", Err: config.ErrConflictingNextVersion}
	case ec.NextVersion != "":
		return ec.NextVersion, "NextVersion in configuration file", nil
	case s.legacy != "":
		return s.legacy, "NextVersion in " + config.LegacyNextVersionFile, nil
	}
	return "", "", nil
}

func (s *ConfigNextVersionStrategy) GetBaseVersions(
	ctx *context.GitVersionContext,
	ec config.EffectiveConfiguration,
	explain bool,
) ([]BaseVersion, error) {
	value, source, err := s.pinned(ec)
	if err != nil || value == "" {
		return nil, err
	}
	// A tag on the current commit supersedes the pin.
	if ctx.IsCurrentCommitTagged {
		return nil, nil
	}

	ver, err := semver.Parse(value, "")
	if err != nil {
		return nil, &config.Error{Key: "next-version", Err: fmt.Errorf("parsing %q: %w", value, err)}
	}

	bv := BaseVersion{Source: source, SemanticVersion: ver}
	if explain {
		bv.Explanation = NewExplanation(s.Name())
		bv.Explanation.Addf("%s: %q is %s", source, value, ver.SemVer())
	}
	return []BaseVersion{bv}, nil
}
