// Package wire encodes note sequences in protocol buffer wire format, for
// players which load melodies at run time instead of compiling them in.
//
// The encoding corresponds to:
//
//	message Sequence {
//	  repeated Note notes = 1;
//	}
//	message Note {
//	  uint32 pitch = 1;  // tab.Pitch, 0 is a rest
//	  uint32 octave = 2;
//	  uint32 ticks = 3;  // 16 per beat column
//	}
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"

	"moria.us/lettertab/tab"
)

const maxMessageSize = 64 * 1024 * 1024

const (
	fieldSequenceNotes protowire.Number = 1

	fieldNotePitch  protowire.Number = 1
	fieldNoteOctave protowire.Number = 2
	fieldNoteTicks  protowire.Number = 3
)

func appendNote(b []byte, n tab.Note) []byte {
	b = protowire.AppendTag(b, fieldNotePitch, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(n.Pitch))
	b = protowire.AppendTag(b, fieldNoteOctave, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(n.Octave))
	b = protowire.AppendTag(b, fieldNoteTicks, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(n.Duration.Ticks()))
	return b
}

// Marshal encodes a note sequence.
func Marshal(notes []tab.Note) []byte {
	return AppendMarshal(nil, notes)
}

// AppendMarshal appends the encoded note sequence to b.
func AppendMarshal(b []byte, notes []tab.Note) []byte {
	var nb []byte
	for _, n := range notes {
		nb = appendNote(nb[:0], n)
		b = protowire.AppendTag(b, fieldSequenceNotes, protowire.BytesType)
		b = protowire.AppendBytes(b, nb)
	}
	return b
}

func durationFromTicks(ticks uint64) (tab.Duration, error) {
	if ticks == 24 {
		return tab.Duration{Kind: tab.QuarterDot}, nil
	}
	if ticks%tab.TicksPerBeat != 0 {
		return tab.Duration{}, fmt.Errorf("duration is not a whole number of beats: %d ticks", ticks)
	}
	return tab.DurationFromBeats(int(ticks / tab.TicksPerBeat)), nil
}

func unmarshalNote(b []byte) (tab.Note, error) {
	var n tab.Note
	var ticks uint64
	for len(b) > 0 {
		num, typ, m := protowire.ConsumeTag(b)
		if m < 0 {
			return n, protowire.ParseError(m)
		}
		b = b[m:]
		if typ != protowire.VarintType {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return n, protowire.ParseError(m)
			}
			b = b[m:]
			continue
		}
		v, m := protowire.ConsumeVarint(b)
		if m < 0 {
			return n, protowire.ParseError(m)
		}
		b = b[m:]
		switch num {
		case fieldNotePitch:
			if v > uint64(tab.GSharp) {
				return n, fmt.Errorf("invalid pitch: %d", v)
			}
			n.Pitch = tab.Pitch(v)
		case fieldNoteOctave:
			if v >= tab.NumOctaves {
				return n, fmt.Errorf("octave out of range: %d", v)
			}
			n.Octave = int(v)
		case fieldNoteTicks:
			ticks = v
		}
	}
	d, err := durationFromTicks(ticks)
	if err != nil {
		return n, err
	}
	n.Duration = d
	return n, nil
}

// Unmarshal decodes a note sequence. Unknown fields are skipped.
func Unmarshal(b []byte) ([]tab.Note, error) {
	var notes []tab.Note
	for len(b) > 0 {
		num, typ, m := protowire.ConsumeTag(b)
		if m < 0 {
			return nil, protowire.ParseError(m)
		}
		b = b[m:]
		if num != fieldSequenceNotes || typ != protowire.BytesType {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			b = b[m:]
			continue
		}
		v, m := protowire.ConsumeBytes(b)
		if m < 0 {
			return nil, protowire.ParseError(m)
		}
		b = b[m:]
		n, err := unmarshalNote(v)
		if err != nil {
			return nil, fmt.Errorf("note %d: %v", len(notes), err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// WriteMessage writes the encoded sequence prefixed with its length as a
// 32-bit big endian integer.
func WriteMessage(w io.Writer, notes []tab.Note) error {
	buf := AppendMarshal([]byte{0, 0, 0, 0}, notes)
	if len(buf)-4 > maxMessageSize {
		return fmt.Errorf("message size is too large: %d", len(buf)-4)
	}
	binary.BigEndian.PutUint32(buf, uint32(len(buf)-4))
	_, err := w.Write(buf)
	return err
}

// ReadMessage reads a sequence written by WriteMessage.
func ReadMessage(r io.Reader) ([]tab.Note, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint32(hdr[:]))
	if n > maxMessageSize {
		return nil, fmt.Errorf("message size is too large: %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return Unmarshal(buf)
}
