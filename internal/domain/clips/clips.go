package clips

import (
	"math"
	"sort"

	"github.com/clipforge/clipforge/internal/types"
)

// DurationTolerance is how far a candidate's reported duration may
// drift from end-start before the candidate is considered corrupt.
const DurationTolerance = 1.0

// TargetTolerance is how far a clip may run long or short of the
// requested length and still count as hitting it.
const TargetTolerance = 15.0

// Sanitize enforces the candidate-set invariants on whatever the
// upstream ranker returned, regardless of whether the ranker already
// honored them: time-range validity, duration consistency, the target
// length window, descending engagement order, non-overlap with higher
// score winning, and the max-count cap. Invalid candidates do not
// count toward the cap. A non-positive targetLengthSec disables the
// length window.
func Sanitize(cands []types.ClipCandidate, sourceDuration float64, targetLengthSec, maxCandidates int) []types.ClipCandidate {
	if maxCandidates <= 0 {
		return nil
	}

	valid := make([]types.ClipCandidate, 0, len(cands))
	for _, c := range cands {
		if !Valid(c, sourceDuration) {
			continue
		}
		if targetLengthSec > 0 &&
			math.Abs((c.EndSeconds-c.StartSeconds)-float64(targetLengthSec)) > TargetTolerance {
			continue
		}
		c.EngagementScore = clamp(c.EngagementScore, 0, 10)
		valid = append(valid, c)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].EngagementScore == valid[j].EngagementScore {
			return valid[i].StartSeconds < valid[j].StartSeconds
		}
		return valid[i].EngagementScore > valid[j].EngagementScore
	})

	out := make([]types.ClipCandidate, 0, maxCandidates)
	for _, c := range valid {
		if overlapsAny(out, c) {
			continue
		}
		out = append(out, c)
		if len(out) >= maxCandidates {
			break
		}
	}
	return out
}

// Valid reports whether a single candidate's timing holds together. A
// zero sourceDuration disables the upper-bound check (unknown source
// length).
func Valid(c types.ClipCandidate, sourceDuration float64) bool {
	if c.StartSeconds < 0 || c.EndSeconds <= c.StartSeconds {
		return false
	}
	if sourceDuration > 0 && c.EndSeconds > sourceDuration {
		return false
	}
	if c.Duration <= 0 {
		return false
	}
	if math.Abs(c.Duration-(c.EndSeconds-c.StartSeconds)) > DurationTolerance {
		return false
	}
	return true
}

// Overlap reports whether two candidates share any time instant.
func Overlap(a, b types.ClipCandidate) bool {
	return a.StartSeconds < b.EndSeconds && a.EndSeconds > b.StartSeconds
}

func overlapsAny(existing []types.ClipCandidate, c types.ClipCandidate) bool {
	for _, e := range existing {
		if Overlap(e, c) {
			return true
		}
	}
	return false
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
