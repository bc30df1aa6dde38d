package tab

import (
	"io"
	"strings"
)

// Merge flattens the octave timelines into a single melodic line. In each
// beat column the lowest octave with a pitch wins. Columns which are silent
// in every octave are attributed to the top octave.
func Merge(t *Timelines) ([]Event, error) {
	n := t.Len()
	if n == 0 {
		return nil, ErrEmptyInput
	}
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{Octave: NumOctaves - 1, Pitch: Rest}
		for octave := range t {
			if p := t[octave][i]; p != Rest {
				events[i] = Event{Octave: octave, Pitch: p}
				break
			}
		}
	}
	return events, nil
}

// Collapse groups the melodic line into notes. A rest extends the note before
// it, and every pitch starts a new note, even if it repeats the previous
// pitch. Only a rest in the first column produces a rest note.
func Collapse(events []Event) []Note {
	if len(events) == 0 {
		return nil
	}
	var notes []Note
	cur := events[0]
	beats := 1
	for _, e := range events[1:] {
		if e.Pitch == Rest {
			beats++
			continue
		}
		notes = append(notes, Note{
			Pitch:    cur.Pitch,
			Octave:   cur.Octave,
			Duration: DurationFromBeats(beats),
		})
		cur = e
		beats = 1
	}
	notes = append(notes, Note{
		Pitch:    cur.Pitch,
		Octave:   cur.Octave,
		Duration: DurationFromBeats(beats),
	})
	return notes
}

// ConvertNotes reads tablature and returns the notes of its melody.
func ConvertNotes(r io.Reader, opts Options) ([]Note, error) {
	t, err := Scan(r, opts)
	if err != nil {
		return nil, err
	}
	events, err := Merge(t)
	if err != nil {
		return nil, err
	}
	return Collapse(events), nil
}

// Convert reads tablature and returns the melody as a comma-separated list of
// firmware macro calls.
func Convert(r io.Reader, opts Options) (string, error) {
	notes, err := ConvertNotes(r, opts)
	if err != nil {
		return "", err
	}
	return Render(notes), nil
}

// ConvertString is like Convert, but reads from a string.
func ConvertString(text string, opts Options) (string, error) {
	return Convert(strings.NewReader(text), opts)
}
