package trunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/semver"
)

func patch(label string) Operator {
	return Operator{Rule: "test", Increment: semver.VersionFieldPatch, Label: &label}
}

func TestAccumulator(t *testing.T) {
	segment := patch("")
	segment.Segment = true
	forced := Operator{Rule: "test", Increment: semver.VersionFieldMinor, Force: true, Label: ptr("beta")}

	tests := []struct {
		name     string
		mode     semver.VersioningMode
		elements []Element
		want     string
	}{
		{"trunk based bumps every commit", semver.VersioningModeTrunkBased,
			[]Element{patch(""), patch(""), patch("")}, "1.0.3"},
		{"mainline bumps once", semver.VersioningModeMainline,
			[]Element{patch(""), patch(""), patch("")}, "1.0.1"},
		{"mainline bumps per segment", semver.VersioningModeMainline,
			[]Element{patch(""), segment}, "1.0.2"},
		{"label starts a pre-release", semver.VersioningModeTrunkBased,
			[]Element{patch("beta")}, "1.0.1-beta.1"},
		{"pre-release number advances", semver.VersioningModeTrunkBased,
			[]Element{patch("beta"), patch("beta")}, "1.0.1-beta.2"},
		{"force bumps the core", semver.VersioningModeTrunkBased,
			[]Element{patch("beta"), forced}, "1.1.0-beta.1"},
		{"operand replaces", semver.VersioningModeTrunkBased,
			[]Element{patch(""), Operand{Rule: "tag", Version: semver.SemanticVersion{Major: 3}}}, "3.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &accumulator{mode: tt.mode, version: semver.SemanticVersion{Major: 1}}
			for _, el := range tt.elements {
				acc.apply(el)
			}
			require.Equal(t, tt.want, acc.result().SemVer())
		})
	}
}

func TestAccumulator_Alternatives(t *testing.T) {
	op := patch("beta")
	op.Alternatives = []semver.SemanticVersion{{Major: 2}}

	acc := &accumulator{mode: semver.VersioningModeTrunkBased, version: semver.SemanticVersion{Major: 1}}
	acc.apply(op)
	require.Equal(t, "2.0.0-beta.1", acc.result().SemVer())

	acc.apply(Operand{Rule: "tag", Version: semver.SemanticVersion{Major: 1, Minor: 5}})
	require.Equal(t, "1.5.0", acc.result().SemVer())

	low := patch("")
	low.Alternatives = []semver.SemanticVersion{{Major: 1}}
	acc.apply(low)
	require.Equal(t, "1.5.1", acc.result().SemVer(), "alternatives never lower the version")
}

func TestAccumulator_LaterCommitsIncrementRaisedVersion(t *testing.T) {
	merge := patch("")
	merge.Segment = true
	merge.Alternatives = []semver.SemanticVersion{{Major: 2}}

	for _, mode := range []semver.VersioningMode{semver.VersioningModeTrunkBased, semver.VersioningModeMainline} {
		t.Run(mode.String(), func(t *testing.T) {
			acc := &accumulator{mode: mode, version: semver.SemanticVersion{Major: 1, Minor: 5}}
			acc.apply(patch(""))
			acc.apply(merge)
			acc.apply(patch(""))
			require.Equal(t, "2.0.1", acc.result().SemVer())
		})
	}
}

func TestAccumulator_Floor(t *testing.T) {
	acc := &accumulator{
		mode:    semver.VersioningModeMainline,
		version: semver.SemanticVersion{Major: 1, Minor: 5},
		floor:   []semver.SemanticVersion{{Major: 2}},
	}
	acc.apply(patch(""))
	acc.apply(patch(""))
	require.Equal(t, "2.0.0", acc.result().SemVer())

	acc = &accumulator{
		mode:    semver.VersioningModeTrunkBased,
		version: semver.SemanticVersion{Major: 2, Minor: 1},
		floor:   []semver.SemanticVersion{{Major: 2}},
	}
	acc.apply(patch(""))
	require.Equal(t, "2.1.1", acc.result().SemVer(), "floor never lowers the version")
}

func TestSummarize(t *testing.T) {
	tag := Operand{Rule: "tag", Version: semver.SemanticVersion{Major: 1, Minor: 2}}
	minor := Operator{Rule: "test", Increment: semver.VersionFieldMinor, Force: true}

	r := summarize([]Element{minor, tag}, true)
	require.Equal(t, semver.VersionFieldNone, r.Increment)
	require.False(t, r.Force)
	require.Equal(t, []semver.SemanticVersion{{Major: 1, Minor: 2}}, r.Alternatives)

	r = summarize([]Element{tag, minor}, false)
	require.Equal(t, semver.VersionFieldMinor, r.Increment)
	require.True(t, r.Force)
	require.Empty(t, r.Alternatives)
}

func TestElementString(t *testing.T) {
	op := Operator{Rule: "CommitOnTrunk", Increment: semver.VersionFieldMinor, Force: true, Label: ptr("beta"),
		Alternatives: []semver.SemanticVersion{{Major: 2}}}
	require.Equal(t, `CommitOnTrunk: increment Minor (forced), label "beta", at least 2.0.0`, op.String())

	od := Operand{Rule: "RootCommit", Version: semver.SemanticVersion{Minor: 1}}
	require.Equal(t, "RootCommit: version 0.1.0", od.String())
}
