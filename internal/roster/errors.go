package roster

import (
	"errors"
	"fmt"
	"strings"

	"gradebook/internal/tabular"
)

// Roster errors
var (
	// ErrEmptyDataset is returned when normalization has nothing to keep.
	ErrEmptyDataset = tabular.ErrEmptyDataset
	// ErrIndexOutOfRange is matched by IndexOutOfRangeError.
	ErrIndexOutOfRange = errors.New("student index out of range")
	// ErrValidation is matched by ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrRosterEmpty is returned by readers that need at least one record.
	ErrRosterEmpty = errors.New("journal has no data")
	// ErrPersistenceCorruption marks a stored payload that cannot be decoded.
	ErrPersistenceCorruption = errors.New("stored journal is corrupt")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of a create or update request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// IndexOutOfRangeError reports an index outside [0, Len).
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("student index %d out of range [0,%d)", e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Is(target error) bool { return target == ErrIndexOutOfRange }
