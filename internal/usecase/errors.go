package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDataIntegrity         = errors.New("data integrity violation")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
