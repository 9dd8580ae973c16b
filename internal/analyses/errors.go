package analyses

import "errors"

var (
	ErrNotFound      = errors.New("analysis not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotCancelable = errors.New("analysis can no longer be canceled")
)
