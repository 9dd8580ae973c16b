package boards

import "errors"

var (
	ErrNotFound     = errors.New("board not found")
	ErrInvalidInput = errors.New("invalid input")
)
