package behavior

import "errors"

var (
	ErrNotFound     = errors.New("behavior score not found")
	ErrInvalidInput = errors.New("invalid behavior input")
)
