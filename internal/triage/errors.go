package triage

import "errors"

var (
	ErrInvalidAcuityLevel = errors.New("acuity level must be between 1 and 5")
	ErrOutOfBandPriority  = errors.New("priority rank outside the band for this acuity level")
)
