package bed

import "errors"

var (
	ErrBedNotFound         = errors.New("bed not found")
	ErrBedNotAvailable     = errors.New("bed is not available")
	ErrBedNotOccupied      = errors.New("bed is not occupied")
	ErrBedOccupied         = errors.New("bed is occupied")
	ErrBedAlreadyAvailable = errors.New("bed is already available")
	ErrPatientBedded       = errors.New("patient already holds a bed")
	ErrInvariantViolated   = errors.New("bed occupancy invariant violated")
)
