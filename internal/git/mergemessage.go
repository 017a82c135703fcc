package git

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

// MergeMessageFormat defines a named regex pattern for merge messages.
type MergeMessageFormat struct {
	Name    string
	Pattern *regexp.Regexp
}

// MergeMessage represents a parsed merge commit or squash merge message.
type MergeMessage struct {
	FormatName          string
	MergedBranch        string
	TargetBranch        string
	PullRequestNumber   int
	IsMergedPullRequest bool
	Message             string
}

// IsEmpty returns true if the merge message did not match any format.
func (m MergeMessage) IsEmpty() bool {
	return m.FormatName == ""
}

// MergedBranchWithoutRemote strips the "origin/" left by remote-tracking
// merges and the "owner/" GitHub puts in front of pull request branches.
func (m MergeMessage) MergedBranchWithoutRemote() string {
	name := m.MergedBranch
	if rest, ok := strings.CutPrefix(name, "refs/heads/"); ok {
		return rest
	}
	if m.FormatName == "RemoteTracking" || m.FormatName == "GitHubPull" {
		if _, rest, ok := strings.Cut(name, "/"); ok {
			return rest
		}
	}
	return name
}

// Version extracts the version a merge carries: first from the merged
// branch name, then from any dotted token in the message itself.
func (m MergeMessage) Version(tagPrefix string) (semver.SemanticVersion, bool) {
	if m.MergedBranch != "" {
		if v, ok := ExtractVersionFromBranch(m.MergedBranchWithoutRemote(), tagPrefix); ok {
			return v, true
		}
	}
	for _, tok := range strings.FieldsFunc(m.Subject(), isMessageSeparator) {
		if !strings.Contains(tok, ".") {
			continue
		}
		if v, ok := semver.TryParse(tok, tagPrefix); ok {
			return v, true
		}
	}
	return semver.SemanticVersion{}, false
}

// Subject is the first line of the original message.
func (m MergeMessage) Subject() string {
	subject, _, _ := strings.Cut(m.Message, "\n")
	return subject
}

func isMessageSeparator(r rune) bool {
	switch r {
	case '/', '-', '\'', '"', ' ', '\t':
		return true
	}
	return false
}

var defaultFormats = []MergeMessageFormat{
	{
		Name:    "Default",
		Pattern: regexp.MustCompile(`(?i)^Merge (branch|tag) '(?P<SourceBranch>[^']*)'(?: into (?P<TargetBranch>\S*))*`),
	},
	{
		Name:    "SmartGit",
		Pattern: regexp.MustCompile(`(?i)^Finish (?P<SourceBranch>\S*)(?: into (?P<TargetBranch>\S*))*`),
	},
	{
		Name:    "BitBucketPull",
		Pattern: regexp.MustCompile(`(?i)^Merge pull request #(?P<PullRequestNumber>\d+) (?:from|in) (?P<Source>.*) from (?P<SourceBranch>\S*) to (?P<TargetBranch>\S*)`),
	},
	{
		Name:    "BitBucketPullv7",
		Pattern: regexp.MustCompile(`(?is)^Pull request #(?P<PullRequestNumber>\d+).*\n\nMerge in (?P<Source>.*) from (?P<SourceBranch>\S*) to (?P<TargetBranch>\S*)`),
	},
	{
		Name:    "GitHubPull",
		Pattern: regexp.MustCompile(`(?i)^Merge pull request #(?P<PullRequestNumber>\d+) (?:from|in) (?P<SourceBranch>\S*)(?: into (?P<TargetBranch>\S*))*`),
	},
	{
		Name:    "RemoteTracking",
		Pattern: regexp.MustCompile(`(?i)^Merge remote-tracking branch '(?P<SourceBranch>[^']*)'(?: into (?P<TargetBranch>\S*))*`),
	},
	{
		Name:    "AzureDevOpsPull",
		Pattern: regexp.MustCompile(`(?i)^Merge pull request (?P<PullRequestNumber>\d+) from (?P<SourceBranch>\S*) into (?P<TargetBranch>\S*)`),
	},
}

var squashFormats = []MergeMessageFormat{
	{
		Name:    "GitHubSquash",
		Pattern: regexp.MustCompile(`^.+\(#(?P<PullRequestNumber>\d+)\)$`),
	},
	{
		Name:    "BitBucketSquash",
		Pattern: regexp.MustCompile(`(?i)^Merged in (?P<SourceBranch>\S*) \(pull request #(?P<PullRequestNumber>\d+)\)`),
	},
}

// DefaultMergeMessageFormats returns the built-in merge message formats.
func DefaultMergeMessageFormats() []MergeMessageFormat {
	return defaultFormats
}

// CompileMergeMessageFormats turns configured formats into matchers,
// sorted by name. Invalid patterns are skipped; configuration validation
// reports them.
func CompileMergeMessageFormats(custom map[string]string) []MergeMessageFormat {
	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]MergeMessageFormat, 0, len(names))
	for _, name := range names {
		re, err := regexp.Compile("(?i)" + custom[name])
		if err != nil {
			continue
		}
		out = append(out, MergeMessageFormat{Name: name, Pattern: re})
	}
	return out
}

// ParseMergeMessage parses a commit message against custom formats first,
// then the built-in ones, then squash formats. It returns a zero
// MergeMessage if nothing matches.
func ParseMergeMessage(message string, custom []MergeMessageFormat) MergeMessage {
	formats := make([]MergeMessageFormat, 0, len(custom)+len(defaultFormats)+len(squashFormats))
	formats = append(formats, custom...)
	formats = append(formats, defaultFormats...)
	formats = append(formats, squashFormats...)

	for _, format := range formats {
		match := format.Pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}

		result := MergeMessage{FormatName: format.Name, Message: message}
		for i, name := range format.Pattern.SubexpNames() {
			if i == 0 || name == "" || match[i] == "" {
				continue
			}
			switch name {
			case "SourceBranch":
				result.MergedBranch = match[i]
			case "TargetBranch":
				result.TargetBranch = match[i]
			case "PullRequestNumber":
				if n, err := strconv.Atoi(match[i]); err == nil {
					result.PullRequestNumber = n
					result.IsMergedPullRequest = true
				}
			}
		}
		return result
	}

	return MergeMessage{}
}

// versionSegmentRe matches a semantic version segment (e.g., "1.2.0", "1.2", "2").
var versionSegmentRe = regexp.MustCompile(`^\d+(\.\d+){0,2}$`)

// ExtractVersionFromBranch finds a version embedded in a branch name such
// as "release/1.2.0" or "release-2.0". The name is split on '/' and '-'
// and the first segment that is a bare version, after stripping the tag
// prefix, wins.
func ExtractVersionFromBranch(branchName, tagPrefix string) (semver.SemanticVersion, bool) {
	var prefixRe *regexp.Regexp
	if tagPrefix != "" {
		prefixRe, _ = regexp.Compile("^(?:" + tagPrefix + ")")
	}

	for _, part := range strings.Split(branchName, "/") {
		if v, ok := tryExtractVersion(part, prefixRe); ok {
			return v, true
		}
		if _, rest, ok := strings.Cut(part, "-"); ok {
			if v, ok := tryExtractVersion(rest, prefixRe); ok {
				return v, true
			}
		}
	}

	return semver.SemanticVersion{}, false
}

func tryExtractVersion(s string, prefixRe *regexp.Regexp) (semver.SemanticVersion, bool) {
	cleaned := s
	if prefixRe != nil {
		cleaned = prefixRe.ReplaceAllString(s, "")
	}
	if cleaned == "" || !versionSegmentRe.MatchString(cleaned) {
		return semver.SemanticVersion{}, false
	}
	return semver.TryParse(cleaned, "")
}
