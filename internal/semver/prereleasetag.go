package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// PreReleaseTag is the "-label.N" part of a version. Both parts are
// optional, but a number always follows a name.
type PreReleaseTag struct {
	Name   string
	Number *int64
}

// NewPreReleaseTag builds a tag with both name and number set.
func NewPreReleaseTag(name string, number int64) PreReleaseTag {
	return PreReleaseTag{Name: name, Number: &number}
}

// HasTag is false only for the stable (empty) tag.
func (t PreReleaseTag) HasTag() bool {
	return t.Name != "" || t.Number != nil
}

// Next bumps the number, starting at 1 when there is none.
func (t PreReleaseTag) Next() PreReleaseTag {
	if t.Number == nil {
		return NewPreReleaseTag(t.Name, 1)
	}
	return NewPreReleaseTag(t.Name, *t.Number+1)
}

// NumberOr returns the number, or def when unset.
func (t PreReleaseTag) NumberOr(def int64) int64 {
	if t.Number == nil {
		return def
	}
	return *t.Number
}

// CompareTo sorts the stable tag above every pre-release. Pre-releases
// compare by case-insensitive name, then number.
func (t PreReleaseTag) CompareTo(other PreReleaseTag) int {
	switch {
	case !t.HasTag() && !other.HasTag():
		return 0
	case !t.HasTag():
		return 1
	case !other.HasTag():
		return -1
	}
	if c := compareNames(t.Name, other.Name); c != 0 {
		return c
	}
	return cmpInt(t.NumberOr(0), other.NumberOr(0))
}

// compareNames compares numeric names by value and the rest
// case-insensitively.
func compareNames(a, b string) int {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmpInt(x, y)
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// String renders "beta.4".
func (t PreReleaseTag) String() string {
	return t.render(".", func(n int64) string { return strconv.FormatInt(n, 10) })
}

// Legacy renders "beta4".
func (t PreReleaseTag) Legacy() string {
	return t.render("", func(n int64) string { return strconv.FormatInt(n, 10) })
}

// LegacyPadded renders "beta0004".
func (t PreReleaseTag) LegacyPadded(pad int) string {
	return t.render("", func(n int64) string { return fmt.Sprintf("%0*d", pad, n) })
}

func (t PreReleaseTag) render(sep string, num func(int64) string) string {
	switch {
	case !t.HasTag():
		return ""
	case t.Number == nil:
		return t.Name
	case t.Name == "":
		return num(*t.Number)
	default:
		return t.Name + sep + num(*t.Number)
	}
}
