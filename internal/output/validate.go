package output

import (
	"fmt"

	msemver "github.com/Masterminds/semver/v3"
)

// Validate checks that SemVer and FullSemVer are SemVer 2.0 strings.
func Validate(vars VersionVariables) error {
	for _, name := range []string{"SemVer", "FullSemVer"} {
		if _, err := msemver.StrictNewVersion(vars[name]); err != nil {
			return fmt.Errorf("%s %q is not a valid semantic version: %w", name, vars[name], err)
		}
	}
	return nil
}
