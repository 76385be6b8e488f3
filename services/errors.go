package services

import "errors"

var (
	// ErrGoalNotFound means an activity write referenced a goal type the
	// user has no active goal for.
	ErrGoalNotFound = errors.New("no active goal for this goal type")

	// ErrValidation covers malformed input: unknown enum values, bad
	// dates, non-positive counts.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is a missing row scoped to the requesting user.
	ErrNotFound = errors.New("not found")
)
