// Package version parses and orders racectl version strings and decides
// whether a stored environment or deployment was written by a compatible
// release of the tool.
//
// Accepted shapes are "MAJOR.MINOR.PATCH", "MAJOR.MINOR.PATCH-PRERELEASE" and
// "MAJOR.MINOR.*", each optionally prefixed with "rc-". A "*" patch is only
// meaningful in a constraint.
package version

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const rcPrefix = "rc-"

// ErrInvalidVersion is matched by every ParseError.
var ErrInvalidVersion = errors.New("invalid version")

// ParseError reports a malformed version string.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidVersion
}

// Version is an immutable value; compare with == or Equal.
type Version struct {
	Major int
	Minor int
	// Patch is nil for the "*" wildcard.
	Patch            *int
	Prerelease       string
	ReleaseCandidate bool
}

// New returns a concrete version.
func New(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: &patch}
}

// Parse parses s into a Version.
func Parse(s string) (Version, error) {
	var v Version
	raw := s
	if strings.HasPrefix(raw, rcPrefix) {
		v.ReleaseCandidate = true
		raw = strings.TrimPrefix(raw, rcPrefix)
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Version{}, &ParseError{Input: s, Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts))}
	}

	var err error
	if v.Major, err = parseNumber(parts[0]); err != nil {
		return Version{}, &ParseError{Input: s, Reason: "major is not numeric"}
	}
	if v.Minor, err = parseNumber(parts[1]); err != nil {
		return Version{}, &ParseError{Input: s, Reason: "minor is not numeric"}
	}

	if parts[2] == "*" {
		return v, nil
	}

	patchStr, prerelease, hasPrerelease := strings.Cut(parts[2], "-")
	patch, err := parseNumber(patchStr)
	if err != nil {
		return Version{}, &ParseError{Input: s, Reason: "patch is neither numeric nor *"}
	}
	if hasPrerelease {
		if prerelease == "" {
			return Version{}, &ParseError{Input: s, Reason: "empty prerelease"}
		}
		v.Prerelease = prerelease
	}
	v.Patch = &patch
	return v, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseNumber(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errors.New("not a number")
		}
	}
	return strconv.Atoi(s)
}

// IsWildcard reports whether the patch segment is "*".
func (v Version) IsWildcard() bool {
	return v.Patch == nil
}

func (v Version) String() string {
	var b strings.Builder
	if v.ReleaseCandidate {
		b.WriteString(rcPrefix)
	}
	fmt.Fprintf(&b, "%d.%d.", v.Major, v.Minor)
	if v.Patch == nil {
		b.WriteString("*")
	} else {
		b.WriteString(strconv.Itoa(*v.Patch))
	}
	if v.Prerelease != "" {
		b.WriteString("-")
		b.WriteString(v.Prerelease)
	}
	return b.String()
}

// Equal reports structural equality.
func (v Version) Equal(o Version) bool {
	if (v.Patch == nil) != (o.Patch == nil) {
		return false
	}
	if v.Patch != nil && *v.Patch != *o.Patch {
		return false
	}
	return v.Major == o.Major && v.Minor == o.Minor &&
		v.Prerelease == o.Prerelease && v.ReleaseCandidate == o.ReleaseCandidate
}

// IsCompatible reports whether v satisfies constraint. Major and minor must
// match; a concrete constraint patch is an upper bound and requires a concrete
// patch in v. Prerelease and rc markers are ignored.
func IsCompatible(constraint, v Version) bool {
	if constraint.Major != v.Major || constraint.Minor != v.Minor {
		return false
	}
	if constraint.Patch == nil {
		return true
	}
	if v.Patch == nil {
		return false
	}
	return *v.Patch <= *constraint.Patch
}

// Compare orders versions by (not rc, major, minor, patch or -1, prerelease
// or "zzzz"), returning -1, 0 or 1.
func Compare(a, b Version) int {
	if c := compareBool(!a.ReleaseCandidate, !b.ReleaseCandidate); c != 0 {
		return c
	}
	if c := compareInt(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareInt(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := compareInt(patchKey(a), patchKey(b)); c != 0 {
		return c
	}
	return strings.Compare(prereleaseKey(a), prereleaseKey(b))
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	return Compare(v, o) < 0
}

// Sort sorts versions in place, stably.
func Sort(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}

func patchKey(v Version) int {
	if v.Patch == nil {
		return -1
	}
	return *v.Patch
}

func prereleaseKey(v Version) string {
	if v.Prerelease == "" {
		return "zzzz"
	}
	return v.Prerelease
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
