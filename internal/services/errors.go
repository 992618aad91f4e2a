package services

import (
	"errors"

	"gradebook/internal/roster"
)

// Service errors
var (
	// ErrRosterEmpty is returned by statistics, charts and export when the
	// journal has no records.
	ErrRosterEmpty = roster.ErrRosterEmpty
	// ErrNilReader is returned by Import without a file body.
	ErrNilReader = errors.New("no file content")
)
