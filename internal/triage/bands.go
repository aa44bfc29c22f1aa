// Package triage holds the pure clinical-classification pieces of the
// engine: the acuity/priority banding table, the vitals threshold
// evaluator, and the chief-complaint marker scan.
package triage

import "math"

// band is the non-overlapping priority-rank range for an acuity level.
// Lower rank means seen sooner; level 1 is the most severe.
type band struct {
	min, max int
}

var bands = map[int]band{
	1: {min: 1, max: 20},
	2: {min: 21, max: 70},
	3: {min: 71, max: 170},
	4: {min: 171, max: 320},
	5: {min: 321, max: math.MaxInt32},
}

// ValidBandRange returns the rank band for a level, for band hints in
// collaborator UIs.
func ValidBandRange(level int) (min, max int, ok bool) {
	b, found := bands[level]
	if !found {
		return 0, 0, false
	}
	return b.min, b.max, true
}

// DefaultRank is the midpoint rank used when the engine assigns a level
// itself (registration default, pending formal triage).
func DefaultRank(level int) int {
	b, ok := bands[level]
	if !ok {
		return 0
	}
	if b.max == math.MaxInt32 {
		return b.min
	}
	return (b.min + b.max) / 2
}

// ValidateAssignment rejects a clinician-entered rank outside the band for
// the chosen acuity level. Acuity assignment itself is a clinical judgment
// input; the engine never derives it from vitals.
func ValidateAssignment(level, rank int) error {
	b, ok := bands[level]
	if !ok {
		return ErrInvalidAcuityLevel
	}
	if rank < b.min || rank > b.max {
		return ErrOutOfBandPriority
	}
	return nil
}
