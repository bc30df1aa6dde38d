package tab

import (
	"errors"
	"strconv"
)

// Conversion errors. Errors from Scan are wrapped in an *Error carrying the
// input position; use errors.Is to test for a kind.
var (
	ErrMalformedOctaveHeader = errors.New("expected octave digit at start of line")
	ErrOctaveOutOfRange      = errors.New("octave out of range")
	ErrUnequalSectionWidths  = errors.New("staff lines in section have different widths")
	ErrDuplicateOctave       = errors.New("octave appears twice in section")
	ErrEmptyInput            = errors.New("no beat columns in input")
)

// An Error is an error at a position in the tablature.
type Error struct {
	Line   int
	Column int
	Err    error
}

func (e *Error) Error() string {
	var s string
	if e.Line != 0 {
		s += strconv.Itoa(e.Line) + ":"
		if e.Column != 0 {
			s += strconv.Itoa(e.Column) + ":"
		}
	}
	if s != "" {
		s += " "
	}
	s += e.Err.Error()
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}
