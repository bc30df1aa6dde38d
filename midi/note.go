package midi

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"moria.us/lettertab/tab"
)

var notes = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the human-readable version of a note value.
func NoteName(value uint8) string {
	octave := int(value)/12 - 1
	chromaticity := int(value) % 12
	return notes[chromaticity] + strconv.Itoa(octave)
}

// Key returns the MIDI note value for a pitch. Octave 4 is the octave
// starting at middle C, so NOTE_A4 is 69. Returns false for rests.
func Key(p tab.Pitch, octave int) (uint8, bool) {
	st := p.Semitone()
	if st < 0 {
		return 0, false
	}
	value := 12*(octave+1) + st
	if value < 0 || 127 < value {
		return 0, false
	}
	return uint8(value), true
}

// A Note is a complete note in a MIDI stream, with both the start and end.
type Note struct {
	Time     uint32
	Duration uint32
	Channel  uint8
	Value    uint8
	Velocity uint8
}

// parseNotes groups all note on and note off events in the track into notes.
func (t *track) parseNotes() ([]Note, error) {
	var all []Note
	active := make(map[uint32]int)
	for len(t.data) != 0 {
		e, ok := t.next()
		if !ok {
			return nil, errInvalidEvent
		}
		var on bool
		switch e.ctl >> 4 {
		case noteOff:
		case noteOn:
			on = e.data[1] != 0
		default:
			continue
		}
		channel := e.ctl & 15
		value := e.data[0]
		key := (uint32(channel) << 8) | uint32(value)
		if on {
			if _, ok := active[key]; ok {
				logrus.Warnf("note double pressed: %s ch=%d", NoteName(value), channel)
				continue
			}
			idx := len(all)
			all = append(all, Note{
				Time:     e.time,
				Channel:  channel,
				Value:    value,
				Velocity: e.data[1],
			})
			active[key] = idx
		} else {
			idx, ok := active[key]
			if !ok {
				logrus.Warnf("note off for unpressed note: %s ch=%d", NoteName(value), channel)
				continue
			}
			delete(active, key)
			all[idx].Duration = e.time - all[idx].Time
		}
	}
	for _, idx := range active {
		n := all[idx]
		logrus.Warnf("missing note off for note: %s ch=%d", NoteName(n.Value), n.Channel)
	}
	return all, nil
}
