package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var (
	looseVersion  = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z.-]*))?(?:\+([0-9A-Za-z.-]*))?$`)
	strictVersion = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?(?:\+([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?$`)

	prefixMu    sync.Mutex
	prefixCache = map[string]*regexp.Regexp{}
)

// Format selects how permissive Parse is.
type Format int

const (
	// FormatLoose accepts "1", "1.2", "1.2.3.4" and missing parts default to 0.
	FormatLoose Format = iota
	// FormatStrict accepts only full SemVer 2.0 strings.
	FormatStrict
)

// Parse reads s as a version after stripping a leading match of the
// tagPrefix regex. A non-empty prefix that does not match is an error.
func Parse(s, tagPrefix string) (SemanticVersion, error) {
	return ParseFormat(s, tagPrefix, FormatLoose)
}

// TryParse is Parse without the error.
func TryParse(s, tagPrefix string) (SemanticVersion, bool) {
	v, err := Parse(s, tagPrefix)
	return v, err == nil
}

// ParseFormat is Parse with an explicit format.
func ParseFormat(s, tagPrefix string, format Format) (SemanticVersion, error) {
	rest, err := stripPrefix(s, tagPrefix)
	if err != nil {
		return SemanticVersion{}, err
	}

	if format == FormatStrict {
		m := strictVersion.FindStringSubmatch(rest)
		if m == nil {
			return SemanticVersion{}, fmt.Errorf("%q is not a strict semantic version", s)
		}
		return build(m[1], m[2], m[3], m[4], m[5])
	}

	m := looseVersion.FindStringSubmatch(rest)
	if m == nil {
		return SemanticVersion{}, fmt.Errorf("%q is not a semantic version", s)
	}
	// m[4] is a fourth numeric part that some tooling emits; it is ignored.
	return build(m[1], m[2], m[3], m[5], m[6])
}

func stripPrefix(s, tagPrefix string) (string, error) {
	if tagPrefix == "" {
		return s, nil
	}
	re, err := prefixRegex(tagPrefix)
	if err != nil {
		return "", err
	}
	loc := re.FindStringIndex(s)
	if loc == nil {
		return "", fmt.Errorf("%q does not match tag prefix %q", s, tagPrefix)
	}
	return s[loc[1]:], nil
}

func prefixRegex(tagPrefix string) (*regexp.Regexp, error) {
	prefixMu.Lock()
	defer prefixMu.Unlock()
	if re, ok := prefixCache[tagPrefix]; ok {
		return re, nil
	}
	re, err := regexp.Compile("^(?:" + tagPrefix + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid tag prefix %q: %w", tagPrefix, err)
	}
	prefixCache[tagPrefix] = re
	return re, nil
}

func build(major, minor, patch, pre, meta string) (SemanticVersion, error) {
	var v SemanticVersion
	var err error
	if v.Major, err = parseField(major); err != nil {
		return SemanticVersion{}, err
	}
	if v.Minor, err = parseField(minor); err != nil {
		return SemanticVersion{}, err
	}
	if v.Patch, err = parseField(patch); err != nil {
		return SemanticVersion{}, err
	}
	v.PreReleaseTag = ParsePreReleaseTag(pre)
	v.BuildMetaData = parseBuildMetaData(meta)
	return v, nil
}

func parseField(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("version component %q: %w", s, err)
	}
	return n, nil
}

// ParsePreReleaseTag splits "beta.4" into name and number. A number is only
// split off after a name, so "4" is a name and never a bare number.
func ParsePreReleaseTag(s string) PreReleaseTag {
	if s == "" {
		return PreReleaseTag{}
	}
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		if n, err := strconv.ParseInt(s[i+1:], 10, 64); err == nil {
			return NewPreReleaseTag(s[:i], n)
		}
	}
	return PreReleaseTag{Name: s}
}
