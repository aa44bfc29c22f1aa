package patient

import "errors"

var (
	ErrRecordNotFound         = errors.New("patient record not found")
	ErrIllegalStateTransition = errors.New("illegal care-pathway transition")
	ErrDuplicateProtocol      = errors.New("patient with this protocol number already registered")
	ErrInvalidArrivalMethod   = errors.New("invalid arrival method")
	ErrInvalidDisposition     = errors.New("invalid discharge disposition")
)
