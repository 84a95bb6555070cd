package analyses

import "errors"

var (
	ErrNotFound       = errors.New("analysis not found")
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidInput   = errors.New("invalid input")
)
