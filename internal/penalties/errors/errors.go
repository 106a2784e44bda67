package errors

import "errors"

var (
	ErrNotFound  = errors.New("penalty not found")
	ErrInvalidID = errors.New("invalid penalty id")
)
