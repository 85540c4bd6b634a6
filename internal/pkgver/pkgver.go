// Package pkgver compares Arch Linux package version strings.
//
// It provides two distinct operations: Compare, a full alpm-style ordering
// used to decide whether a remote version is actually newer, and Classify,
// a loose segment-based estimate of how big a version change is, used only
// for tooltip coloring.
package pkgver

import (
	"regexp"
	"strconv"
	"strings"
)

// Severity describes the estimated magnitude of a version change.
type Severity int

const (
	SeverityMajor Severity = iota
	SeverityMinor
	SeverityPatch
	SeverityPre
	SeverityOther
)

var severityNames = map[Severity]string{
	SeverityMajor: "major",
	SeverityMinor: "minor",
	SeverityPatch: "patch",
	SeverityPre:   "pre",
	SeverityOther: "other",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "other"
}

// preReleaseMarkerRegex matches pre-release and revision-count segments
// like alpha, beta2, rc1, pre3 or r62 (VCS snapshot counters).
var preReleaseMarkerRegex = regexp.MustCompile(`^(alpha|beta|pre|rc|r)\d*$`)

// segmentDelimiters are the characters that separate version segments.
const segmentDelimiters = ".-_:+~"

// splitSegments breaks a version string into delimiter-separated segments.
func splitSegments(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return strings.ContainsRune(segmentDelimiters, r)
	})
}

// releaseRegex matches a trailing numeric pkgrel like -1 or -2.1. Anything
// non-numeric after a dash belongs to the version itself.
var releaseRegex = regexp.MustCompile(`-(\d+(?:\.\d+)?)$`)

// evr holds the three parts of an Arch package version: epoch:version-release.
type evr struct {
	epoch   int
	version string
	release string
}

// splitEVR splits "epoch:version-release". Epoch and release are optional;
// a missing epoch counts as 0.
func splitEVR(v string) evr {
	var out evr
	if idx := strings.IndexByte(v, ':'); idx >= 0 {
		if epoch, err := strconv.Atoi(v[:idx]); err == nil {
			out.epoch = epoch
			v = v[idx+1:]
		}
	}
	if m := releaseRegex.FindStringSubmatch(v); m != nil {
		out.release = m[1]
		v = strings.TrimSuffix(v, "-"+m[1])
	}
	out.version = v
	return out
}

// Classify estimates the magnitude of the change from oldVersion to
// newVersion. It never fails: versions that defy interpretation come back
// as SeverityOther. The result is advisory and only drives display color.
func Classify(oldVersion, newVersion string) Severity {
	if oldVersion == newVersion {
		return SeverityOther
	}

	oldEVR := splitEVR(oldVersion)
	newEVR := splitEVR(newVersion)

	// Epoch bumps are forced resets of the version ordering, not a
	// semantic change of any particular size.
	if oldEVR.epoch != newEVR.epoch {
		return SeverityOther
	}

	oldSegs := splitSegments(oldEVR.version)
	newSegs := splitSegments(newEVR.version)

	maxLen := len(oldSegs)
	if len(newSegs) > maxLen {
		maxLen = len(newSegs)
	}

	for i := 0; i < maxLen; i++ {
		var oldSeg, newSeg string
		if i < len(oldSegs) {
			oldSeg = oldSegs[i]
		}
		if i < len(newSegs) {
			newSeg = newSegs[i]
		}
		if segmentsEqual(oldSeg, newSeg) {
			continue
		}

		if isPreReleaseMarker(oldSeg) || isPreReleaseMarker(newSeg) {
			return SeverityPre
		}
		switch i {
		case 0:
			return SeverityMajor
		case 1:
			return SeverityMinor
		case 2:
			return SeverityPatch
		default:
			return SeverityOther
		}
	}

	// Same version, different pkgrel (or some difference the segment walk
	// cannot see, like delimiter-only changes).
	return SeverityOther
}

// segmentsEqual compares two segments numerically when both parse as
// integers, lexically otherwise.
func segmentsEqual(a, b string) bool {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return an == bn
	}
	return a == b
}

func isPreReleaseMarker(seg string) bool {
	return seg != "" && preReleaseMarkerRegex.MatchString(strings.ToLower(seg))
}

// Compare orders two Arch package versions the way alpm's vercmp does.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
//
// Ordering rules: epoch dominates, then the version part segment by segment
// (numeric runs compare as numbers and always beat alphabetic runs), then
// the package release number.
func Compare(a, b string) int {
	av := splitEVR(a)
	bv := splitEVR(b)

	if av.epoch != bv.epoch {
		if av.epoch < bv.epoch {
			return -1
		}
		return 1
	}

	if cmp := rpmvercmp(av.version, bv.version); cmp != 0 {
		return cmp
	}

	// Only compare releases when both carry one; "1.0" and "1.0-2" are
	// equal for update purposes.
	if av.release != "" && bv.release != "" {
		return rpmvercmp(av.release, bv.release)
	}
	return 0
}

// Newer reports whether candidate is strictly newer than installed.
func Newer(candidate, installed string) bool {
	return Compare(candidate, installed) > 0
}

// rpmvercmp implements the alphanumeric block comparison at the heart of
// alpm's vercmp.
func rpmvercmp(a, b string) int {
	if a == b {
		return 0
	}

	ia, ib := 0, 0
	for ia < len(a) && ib < len(b) {
		// Skip separator runs; a longer separator run sorts newer.
		sa, sb := 0, 0
		for ia < len(a) && !isAlnum(a[ia]) {
			ia++
			sa++
		}
		for ib < len(b) && !isAlnum(b[ib]) {
			ib++
			sb++
		}
		if sa != sb {
			if sa < sb {
				return -1
			}
			return 1
		}
		if ia >= len(a) || ib >= len(b) {
			break
		}

		// Take the next homogeneous block from each side.
		numericA := isDigit(a[ia])
		blockA := takeBlock(a, &ia, numericA)
		numericB := isDigit(b[ib])
		blockB := takeBlock(b, &ib, numericB)

		// A numeric block is always newer than an alphabetic one.
		if numericA != numericB {
			if numericA {
				return 1
			}
			return -1
		}

		if numericA {
			blockA = strings.TrimLeft(blockA, "0")
			blockB = strings.TrimLeft(blockB, "0")
			if len(blockA) != len(blockB) {
				if len(blockA) < len(blockB) {
					return -1
				}
				return 1
			}
		}
		if blockA != blockB {
			if blockA < blockB {
				return -1
			}
			return 1
		}
	}

	if ia >= len(a) && ib >= len(b) {
		return 0
	}

	// One side has leftover content. A trailing alphabetic rest sorts
	// older (1.0a < 1.0), anything else sorts newer (1.0.1 > 1.0).
	if ia < len(a) {
		if isAlpha(a[ia]) {
			return -1
		}
		return 1
	}
	if isAlpha(b[ib]) {
		return 1
	}
	return -1
}

// takeBlock consumes a run of digits (numeric=true) or letters from s
// starting at *i and advances the index past it.
func takeBlock(s string, i *int, numeric bool) string {
	start := *i
	for *i < len(s) {
		c := s[*i]
		if numeric && !isDigit(c) {
			break
		}
		if !numeric && !isAlpha(c) {
			break
		}
		*i++
	}
	return s[start:*i]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool { return isDigit(c) || isAlpha(c) }
