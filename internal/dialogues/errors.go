package dialogues

import "errors"

var (
	ErrNotFound     = errors.New("dialogue not found")
	ErrInvalidInput = errors.New("invalid input")
)
