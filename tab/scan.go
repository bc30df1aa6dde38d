// Package tab converts letter tablature into firmware note macros.
//
// A tablature is a sequence of sections separated by blank lines. Each
// section contains one staff line per octave, written as the octave digit
// followed by a body between bars:
//
//	5|--d--|
//	4|dd-a-|
//
// Each body character is one beat. Lower case letters are naturals, upper
// case letters are the sharp of that letter, and anything else is a rest.
package tab

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Options controls how tablature is scanned.
type Options struct {
	// PadShortLines rest-pads staff lines which are shorter than the widest
	// line in their section, instead of failing with
	// ErrUnequalSectionWidths.
	PadShortLines bool
}

// Timelines holds the pitch of every beat column, for each octave. After a
// successful scan all timelines have the same length.
type Timelines [NumOctaves][]Pitch

// Len returns the number of beat columns.
func (t *Timelines) Len() int {
	return len(t[0])
}

type scanState int

const (
	stateBeginningOfLine scanState = iota
	stateFirstBar
	stateBody
	stateEndOfLine
)

type scanner struct {
	opts  Options
	state scanState
	lines Timelines

	// Current section.
	present [NumOctaves]bool
	base    int
	width   int

	// Current staff line.
	octave    int
	lineWidth int

	// Position of the most recent character, 1-based.
	lineno int
	col    int
}

func newScanner(opts Options) *scanner {
	return &scanner{
		opts:   opts,
		width:  -1,
		lineno: 1,
	}
}

func (s *scanner) errorf(err error, format string, a ...interface{}) error {
	if format != "" {
		err = fmt.Errorf("%w: "+format, append([]interface{}{err}, a...)...)
	}
	return &Error{Line: s.lineno, Column: s.col, Err: err}
}

func (s *scanner) next(c rune) error {
	switch s.state {
	case stateBeginningOfLine:
		if c == '\n' {
			s.closeSection()
			return nil
		}
		if c < '0' || '9' < c {
			return s.errorf(ErrMalformedOctaveHeader, "found %q", c)
		}
		octave := int(c - '0')
		if octave >= NumOctaves {
			return s.errorf(ErrOctaveOutOfRange, "%d", octave)
		}
		if s.present[octave] {
			return s.errorf(ErrDuplicateOctave, "%d", octave)
		}
		s.present[octave] = true
		s.octave = octave
		s.lineWidth = 0
		s.state = stateFirstBar
	case stateFirstBar:
		if c == '\n' {
			return s.endLine(stateBeginningOfLine)
		}
		s.state = stateBody
	case stateBody:
		switch c {
		case '|':
			return s.endLine(stateEndOfLine)
		case '\n':
			return s.endLine(stateBeginningOfLine)
		}
		s.lines[s.octave] = append(s.lines[s.octave], PitchFromChar(c))
		s.lineWidth++
	case stateEndOfLine:
		s.state = stateBeginningOfLine
	default:
		panic("bad state")
	}
	return nil
}

// endLine finishes the current staff line and checks its width against the
// rest of the section.
func (s *scanner) endLine(next scanState) error {
	s.state = next
	switch {
	case s.width < 0:
		s.width = s.lineWidth
	case s.lineWidth == s.width:
	case !s.opts.PadShortLines:
		return s.errorf(ErrUnequalSectionWidths,
			"octave %d has %d beats, expected %d", s.octave, s.lineWidth, s.width)
	case s.lineWidth > s.width:
		s.width = s.lineWidth
	}
	return nil
}

// closeSection pads every octave to the end of the section, so octaves which
// were absent from the section are silent for its duration.
func (s *scanner) closeSection() {
	if s.width > 0 {
		end := s.base + s.width
		for octave := range s.lines {
			for len(s.lines[octave]) < end {
				s.lines[octave] = append(s.lines[octave], Rest)
			}
		}
		s.base = end
	}
	s.width = -1
	for i := range s.present {
		s.present[i] = false
	}
}

func (s *scanner) finish() error {
	switch s.state {
	case stateFirstBar, stateBody:
		if err := s.endLine(stateBeginningOfLine); err != nil {
			return err
		}
	}
	s.closeSection()
	return nil
}

// Scan reads tablature and returns the pitch timeline of every octave.
// Carriage returns are ignored.
func Scan(r io.Reader, opts Options) (*Timelines, error) {
	br := bufio.NewReader(r)
	s := newScanner(opts)
	for {
		c, _, err := br.ReadRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if c == '\r' {
			continue
		}
		s.col++
		if err := s.next(c); err != nil {
			return nil, err
		}
		if c == '\n' {
			s.lineno++
			s.col = 0
		}
	}
	if err := s.finish(); err != nil {
		return nil, err
	}
	return &s.lines, nil
}

// ScanString is like Scan, but reads from a string.
func ScanString(text string, opts Options) (*Timelines, error) {
	return Scan(strings.NewReader(text), opts)
}
