package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrStorage     = errors.New("storage failure")
	ErrCorrupt     = errors.New("stored record is malformed")
	ErrDuplicateID = errors.New("idea id already exists")
)
