package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FormatConfig carries the presentation knobs used by ComputeFormatValues.
type FormatConfig struct {
	// Padding applies to every *Padded variable and NuGet forms.
	Padding int
	// CommitDateFormat accepts a Go layout or a yyyy-MM-dd style pattern.
	CommitDateFormat string
	// PreReleaseWeight is added to the pre-release number of labelled versions.
	PreReleaseWeight int64
	// TagPreReleaseWeight is reported as the weighted number of stable versions.
	TagPreReleaseWeight int64
}

// DefaultFormatConfig is what an empty FormatConfig is normalised to.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{Padding: 4, CommitDateFormat: "yyyy-MM-dd", TagPreReleaseWeight: 60000}
}

func (c FormatConfig) normalise() FormatConfig {
	d := DefaultFormatConfig()
	if c.Padding <= 0 {
		c.Padding = d.Padding
	}
	if c.CommitDateFormat == "" {
		c.CommitDateFormat = d.CommitDateFormat
	}
	if c.TagPreReleaseWeight == 0 {
		c.TagPreReleaseWeight = d.TagPreReleaseWeight
	}
	return c
}

var unsafeBranchChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// EscapeBranchName replaces every character outside [a-zA-Z0-9-] with '-'.
func EscapeBranchName(name string) string {
	return unsafeBranchChars.ReplaceAllString(name, "-")
}

func withDash(s string) string {
	if s == "" {
		return ""
	}
	return "-" + s
}

// ComputeFormatValues renders every output variable of ver.
func ComputeFormatValues(ver SemanticVersion, cfg FormatConfig) map[string]string {
	cfg = cfg.normalise()
	pad := cfg.Padding
	meta := ver.BuildMetaData
	tag := ver.PreReleaseTag

	major := strconv.FormatInt(ver.Major, 10)
	minor := strconv.FormatInt(ver.Minor, 10)
	patch := strconv.FormatInt(ver.Patch, 10)

	number, weighted := "", strconv.FormatInt(cfg.TagPreReleaseWeight, 10)
	if tag.Number != nil {
		number = strconv.FormatInt(*tag.Number, 10)
		weighted = strconv.FormatInt(*tag.Number+cfg.PreReleaseWeight, 10)
	}

	commitDate := ""
	if !meta.CommitDate.IsZero() {
		commitDate = meta.CommitDate.Format(goLayout(cfg.CommitDateFormat))
	}

	assembly := ver.MajorMinorPatch() + ".0"
	nuget := ver.LegacySemVerPadded(pad)

	return map[string]string{
		"Major":                           major,
		"Minor":                           minor,
		"Patch":                           patch,
		"MajorMinorPatch":                 ver.MajorMinorPatch(),
		"SemVer":                          ver.SemVer(),
		"FullSemVer":                      ver.FullSemVer(),
		"LegacySemVer":                    ver.LegacySemVer(),
		"LegacySemVerPadded":              ver.LegacySemVerPadded(pad),
		"InformationalVersion":            ver.InformationalVersion(),
		"PreReleaseTag":                   tag.String(),
		"PreReleaseTagWithDash":           withDash(tag.String()),
		"PreReleaseLabel":                 tag.Name,
		"PreReleaseLabelWithDash":         withDash(tag.Name),
		"PreReleaseNumber":                number,
		"WeightedPreReleaseNumber":        weighted,
		"BuildMetaData":                   meta.String(),
		"BuildMetaDataPadded":             meta.Padded(pad),
		"FullBuildMetaData":               meta.FullString(),
		"BranchName":                      meta.Branch,
		"EscapedBranchName":               EscapeBranchName(meta.Branch),
		"Sha":                             meta.Sha,
		"ShortSha":                        meta.ShortSha,
		"VersionSourceSha":                meta.VersionSourceSha,
		"CommitsSinceVersionSource":       strconv.FormatInt(meta.CommitsSinceVersionSource, 10),
		"CommitsSinceVersionSourcePadded": fmt.Sprintf("%0*d", pad, meta.CommitsSinceVersionSource),
		"UncommittedChanges":              strconv.FormatInt(meta.UncommittedChanges, 10),
		"CommitDate":                      commitDate,
		"AssemblySemVer":                  assembly,
		"AssemblySemFileVer":              assembly,
		"AssemblyInformationalVersion":    ver.InformationalVersion(),
		"NuGetVersionV2":                  nuget,
		"NuGetVersion":                    nuget,
		"NuGetPreReleaseTagV2":            tag.LegacyPadded(pad),
		"NuGetPreReleaseTag":              tag.LegacyPadded(pad),
	}
}

// Longer tokens come first so "yyyy" is not consumed as two "yy".
var dateTokens = strings.NewReplacer(
	"yyyy", "2006",
	"yy", "06",
	"MMMM", "January",
	"MMM", "Jan",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"hh", "03",
	"mm", "04",
	"ss", "05",
	"tt", "PM",
	"fff", "000",
	"ff", "00",
)

// goLayout turns "yyyy-MM-dd" style patterns into Go layouts. Strings that
// already contain the reference year pass through.
func goLayout(format string) string {
	if strings.Contains(format, "2006") {
		return format
	}
	return dateTokens.Replace(format)
}
