package wire

import (
	"bytes"
	"io"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"moria.us/lettertab/tab"
)

func TestMessage(t *testing.T) {
	notes, err := tab.ConvertNotes(bytes.NewReader([]byte("5|--d--|\n4|dd-a-c-----|\n")), tab.Options{PadShortLines: true})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteMessage(&buf, notes); err != nil {
		t.Fatal(err)
	}
	got, err := ReadMessage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, notes) {
		t.Errorf("ReadMessage = %v, expect %v", got, notes)
	}
	if _, err := ReadMessage(&buf); err != io.EOF {
		t.Errorf("ReadMessage at end: %v, expect EOF", err)
	}
}

func TestUnmarshalSkipsUnknown(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 7, protowire.BytesType)
	b = protowire.AppendString(b, "ignored")
	b = AppendMarshal(b, []tab.Note{{Pitch: tab.C, Octave: 4, Duration: tab.DurationFromBeats(5)}})
	notes, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	expect := []tab.Note{{Pitch: tab.C, Octave: 4, Duration: tab.Duration{Kind: tab.Explicit, Beats: 5}}}
	if !reflect.DeepEqual(notes, expect) {
		t.Errorf("Unmarshal = %v, expect %v", notes, expect)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	note := func(pitch, octave, ticks uint64) []byte {
		var nb []byte
		nb = protowire.AppendTag(nb, fieldNotePitch, protowire.VarintType)
		nb = protowire.AppendVarint(nb, pitch)
		nb = protowire.AppendTag(nb, fieldNoteOctave, protowire.VarintType)
		nb = protowire.AppendVarint(nb, octave)
		nb = protowire.AppendTag(nb, fieldNoteTicks, protowire.VarintType)
		nb = protowire.AppendVarint(nb, ticks)
		b := protowire.AppendTag(nil, fieldSequenceNotes, protowire.BytesType)
		return protowire.AppendBytes(b, nb)
	}
	cases := [][]byte{
		{0x0a, 0x05, 0x08},
		note(99, 4, 16),
		note(1, 9, 16),
		note(1, 4, 17),
	}
	for _, b := range cases {
		if _, err := Unmarshal(b); err == nil {
			t.Errorf("Unmarshal(%x): ok (expect err)", b)
		}
	}
}
