package service

import (
	"errors"
	"strings"
)

// Sentinel kinds for service errors.
var (
	ErrValidation   = errors.New("validation failed")
	ErrAlreadyVoted = errors.New("already voted for this idea")
	ErrIdeaNotFound = errors.New("idea not found")
)

// ValidationError lists the submission fields that were empty after trimming.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "please fill in all fields: " + strings.Join(e.Fields, ", ")
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
