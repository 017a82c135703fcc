package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/calculator"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
)

// strategyOrder defines the display order for strategies.
var strategyOrder = []string{
	"ConfigNextVersion",
	"TaggedCommit",
	"MergeMessage",
	"VersionInBranchName",
	"TrackReleaseBranches",
	"Fallback",
}

const arrowPrefix = "→"

// explainWriter remembers the first write error so sections can be printed
// without checking every line.
type explainWriter struct {
	w   io.Writer
	err error
}

func (ew *explainWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *explainWriter) section(title string, steps []string) {
	if len(steps) == 0 {
		return
	}
	ew.printf("\n%s\n", title)
	for _, step := range steps {
		ew.printf("  %s %s\n", arrowPrefix, step)
	}
}

// WriteExplanation writes the decision trace of a calculation: the branch
// configuration used, then either the tag on the current commit, the folded
// trunk history, or every strategy candidate with the selected base version
// and the increment and pre-release reasoning.
func WriteExplanation(w io.Writer, result calculator.VersionResult) error {
	ew := &explainWriter{w: w}
	ec := result.EffectiveConfiguration

	ew.printf("Branch: %s\n", result.BranchName)
	ew.printf("Configuration: %s (mode %s, increment %s", ec.BranchName, ec.Mode, ec.Increment)
	if name := result.Branch.FriendlyName(); name != "" {
		ew.printf(", resolved from %s", name)
	}
	ew.printf(")\n")

	switch result.Path {
	case calculator.PathTagged:
		ew.printf("\nCurrent commit is tagged %s\n", result.BaseVersion.SemanticVersion.SemVer())
	case calculator.PathTrunk:
		ew.section(ec.Mode.String()+" history:", result.TrunkSteps)
	default:
		writeCandidates(ew, result.Candidates)
		ew.printf("\nSelected: %s (%s, source: %s)\n",
			result.BaseVersion.Source,
			result.BaseVersion.SemanticVersion.SemVer(),
			sourceOf(result.BaseVersion.BaseVersionSource))
		if result.IncrementExplanation != nil {
			ew.section("Increment:", result.IncrementExplanation.Steps)
		}
		ew.section("Pre-release:", result.PreReleaseSteps)
	}

	ew.printf("\nResult: %s\n", result.Version.FullSemVer())
	return ew.err
}

func writeCandidates(ew *explainWriter, candidates []calculator.Candidate) {
	byStrategy := make(map[string][]calculator.Candidate)
	for _, c := range candidates {
		name := c.BaseVersion.Source
		if c.BaseVersion.Explanation != nil {
			name = c.BaseVersion.Explanation.Strategy
		}
		byStrategy[name] = append(byStrategy[name], c)
	}

	ew.printf("\nStrategies evaluated:\n")
	for _, name := range strategyOrder {
		list := byStrategy[name]
		if len(list) == 0 {
			ew.printf("  %-22s (none)\n", name+":")
			continue
		}
		for i, c := range list {
			label := name + ":"
			if i > 0 {
				label = ""
			}
			bv := c.BaseVersion
			ew.printf("  %-22s %s -> %s (source: %s, increment: %t)",
				label, bv.SemanticVersion.SemVer(), c.Incremented.SemVer(), sourceOf(bv.BaseVersionSource), bv.ShouldIncrement)
			if c.Ignored {
				ew.printf(" [ignored]")
			}
			ew.printf("\n")
			if bv.Explanation != nil {
				for _, step := range bv.Explanation.Steps {
					ew.printf("    %s %s\n", arrowPrefix, step)
				}
			}
		}
	}
}

func sourceOf(c *git.Commit) string {
	if c == nil {
		return "external"
	}
	return c.ShortSha()
}

// FormatExplanation returns the explain output as a string.
func FormatExplanation(result calculator.VersionResult) string {
	var sb strings.Builder
	_ = WriteExplanation(&sb, result)
	return sb.String()
}
