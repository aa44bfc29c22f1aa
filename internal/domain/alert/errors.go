package alert

import "errors"

var (
	ErrAlertNotFound     = errors.New("alert activation not found")
	ErrInvalidKind       = errors.New("invalid alert kind")
	ErrInvalidTraumaTier = errors.New("trauma activation level must be between 1 and 3")
)
