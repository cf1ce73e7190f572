package models

import "errors"

// Custom errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidProjection = errors.New("invalid projection")
	ErrInvalidSnapshot   = errors.New("invalid odds data snapshot")
	ErrSnapshotNotFound  = errors.New("odds data snapshot not fetched")
	ErrUnknownPool       = errors.New("unknown pool")
)
