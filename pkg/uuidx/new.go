// Package uuidx generates time-ordered identifiers for messages and agents.
package uuidx

import "github.com/google/uuid"

// New returns a fresh version 7 UUID. V7 identifiers are time-ordered, which
// keeps message and agent ids naturally sortable by creation time. It panics
// if the random source fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns a new version 7 UUID rendered as a string.
func NewString() string {
	return New().String()
}
