package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var (
	regexMu    sync.Mutex
	regexCache = map[string]*regexp.Regexp{}
)

func compile(pattern string) (*regexp.Regexp, error) {
	regexMu.Lock()
	defer regexMu.Unlock()
	if re, ok := regexCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache[pattern] = re
	return re, nil
}

// GetBranchConfiguration returns the first branch configuration, in
// declaration order, whose regex matches branchName. branchName should
// already have any remote prefix removed.
func (c *Config) GetBranchConfiguration(branchName string) (NamedBranch, error) {
	for _, nb := range c.Branches {
		if nb.Config.Regex == nil {
			continue
		}
		re, err := compile(*nb.Config.Regex)
		if err != nil {
			return NamedBranch{}, &Error{Key: "branches." + nb.Name + ".regex", Err: err}
		}
		if re.MatchString(branchName) {
			return nb, nil
		}
	}
	return NamedBranch{}, &Error{Err: fmt.Errorf("no branch configuration matches %q", branchName)}
}

// IsReleaseBranch reports whether branchName resolves to a release
// configuration.
func (c *Config) IsReleaseBranch(branchName string) bool {
	nb, err := c.GetBranchConfiguration(branchName)
	return err == nil && nb.Config.IsReleaseBranch != nil && *nb.Config.IsReleaseBranch
}

var knownBranchPrefixes = []string{
	"feature/", "features/", "feature-",
	"hotfix/", "hotfixes/", "hotfix-",
	"bugfix/", "bugfixes/",
	"release/", "releases/", "release-",
	"support/",
	"pull/", "pull-requests/", "pr/",
}

var unsafeLabelChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// BranchLabelName is what {BranchName} expands to for branchName: the
// regex's BranchName capture when it has one, otherwise the name with a
// well-known family prefix removed. Characters outside [a-zA-Z0-9-]
// become '-'.
func BranchLabelName(branchRegex, branchName string) string {
	name := branchName
	captured := false
	if re, err := compile(branchRegex); err == nil && branchRegex != "" {
		if idx := re.SubexpIndex("BranchName"); idx >= 0 {
			if m := re.FindStringSubmatch(branchName); m != nil && m[idx] != "" {
				name, captured = m[idx], true
			}
		}
	}
	if !captured {
		for _, p := range knownBranchPrefixes {
			if strings.HasPrefix(name, p) {
				name = name[len(p):]
				break
			}
		}
	}
	return unsafeLabelChars.ReplaceAllString(name, "-")
}

// ResolveLabel expands the configured label for branchName. "{BranchName}"
// is substituted, the legacy value "useBranchName" means the whole label
// is the branch name, and a label-number-pattern match is appended.
// branchOverride, when non-empty, replaces the branch name.
func (ec EffectiveConfiguration) ResolveLabel(branchName, branchOverride string) string {
	label := ec.Label
	name := branchName
	if branchOverride != "" {
		name = branchOverride
	}

	switch {
	case label == "useBranchName":
		label = BranchLabelName(ec.BranchRegex, name)
	case strings.Contains(label, "{BranchName}"):
		label = strings.ReplaceAll(label, "{BranchName}", BranchLabelName(ec.BranchRegex, name))
	}

	if ec.LabelNumberPattern != "" {
		if re, err := compile(ec.LabelNumberPattern); err == nil {
			if m := re.FindStringSubmatch(branchName); m != nil {
				if idx := re.SubexpIndex("number"); idx >= 0 && m[idx] != "" {
					if n, err := strconv.ParseInt(m[idx], 10, 64); err == nil {
						label += strconv.FormatInt(n, 10)
					}
				}
			}
		}
	}
	return label
}
