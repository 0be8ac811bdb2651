package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidGoal     = errors.New("invalid goal")
	ErrStorage         = errors.New("storage failure")
	ErrRoleTaken       = errors.New("role already assigned")
	ErrProviderFailure = errors.New("provider failure")
)
