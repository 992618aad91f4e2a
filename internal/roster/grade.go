package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Grade bounds.
const (
	MinGrade = 1
	MaxGrade = 5
)

var (
	// ErrGradeNotNumber is returned for input that does not parse as a number.
	ErrGradeNotNumber = errors.New("grade is not a number")
	// ErrGradeOutOfRange is returned for numbers outside [1,5].
	ErrGradeOutOfRange = errors.New("grade must be between 1 and 5")
)

// Grade is an optional mark in [1,5]. The zero value is ungraded.
type Grade struct {
	value float64
	set   bool
}

// Ungraded returns the empty grade.
func Ungraded() Grade { return Grade{} }

// NewGrade validates v and returns a graded value.
func NewGrade(v float64) (Grade, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Grade{}, ErrGradeNotNumber
	}
	if v < MinGrade || v > MaxGrade {
		return Grade{}, ErrGradeOutOfRange
	}
	return Grade{value: v, set: true}, nil
}

// MustGrade is NewGrade for literals known to be valid.
func MustGrade(v float64) Grade {
	g, err := NewGrade(v)
	if err != nil {
		panic(err)
	}
	return g
}

// ParseGrade parses user input. Blank input is ungraded.
func ParseGrade(s string) (Grade, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Grade{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Grade{}, ErrGradeNotNumber
	}
	return NewGrade(v)
}

// CoerceGrade parses imported data, turning anything invalid into ungraded.
// The second result is false when a non-blank value was discarded.
func CoerceGrade(s string) (Grade, bool) {
	g, err := ParseGrade(s)
	if err != nil {
		return Grade{}, false
	}
	return g, true
}

// Value returns the numeric grade and whether it is set.
func (g Grade) Value() (float64, bool) { return g.value, g.set }

// IsSet reports whether the grade holds a number.
func (g Grade) IsSet() bool { return g.set }

// String formats the grade with the shortest exact representation, or "".
func (g Grade) String() string {
	if !g.set {
		return ""
	}
	return strconv.FormatFloat(g.value, 'f', -1, 64)
}

// MarshalJSON encodes a number, or "" when ungraded.
func (g Grade) MarshalJSON() ([]byte, error) {
	if !g.set {
		return []byte(`""`), nil
	}
	return []byte(g.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string, "" or null. Values that
// are not valid grades decode as ungraded.
func (g *Grade) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*g = Grade{}
		return nil
	}
	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	*g, _ = CoerceGrade(s)
	return nil
}
