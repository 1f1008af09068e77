package actors

import "errors"

var (
	ErrNotFound     = errors.New("actor not found")
	ErrInvalidInput = errors.New("invalid actor input")
)
