package model

import (
	"errors"
	"slices"
)

var (
	ErrGhostNotFound   = errors.New("no ghost recording")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrSessionActive   = errors.New("session is active")
)

// ValidDuration reports whether seconds is one of the allowed budgets.
func ValidDuration(seconds int) bool {
	return slices.Contains(DurationChoices, seconds)
}
