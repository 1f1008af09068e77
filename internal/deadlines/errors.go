package deadlines

import "errors"

var (
	ErrNotFound     = errors.New("deadline not found")
	ErrRuleNotFound = errors.New("rule not found")
	ErrInvalidRule  = errors.New("invalid rule: warning lead time must be shorter than deadline span")
	ErrInvalidInput = errors.New("invalid deadline input")
	ErrClosed       = errors.New("deadline already closed")
)
