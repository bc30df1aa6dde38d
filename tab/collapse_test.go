package tab

import (
	"errors"
	"io/ioutil"
	"reflect"
	"strings"
	"testing"
)

func TestMerge(t *testing.T) {
	tl, err := ScanString("5|--d--|\n4|dd-a-|\n", Options{})
	if err != nil {
		t.Fatal(err)
	}
	events, err := Merge(tl)
	if err != nil {
		t.Fatal(err)
	}
	expect := []Event{
		{4, D},
		{4, D},
		{5, D},
		{4, A},
		{NumOctaves - 1, Rest},
	}
	if !reflect.DeepEqual(events, expect) {
		t.Errorf("Merge = %v, expect %v", events, expect)
	}
}

func TestMergeLowerOctaveWins(t *testing.T) {
	for _, text := range []string{
		"6|g|\n2|c|\n",
		"2|c|\n6|g|\n",
	} {
		tl, err := ScanString(text, Options{})
		if err != nil {
			t.Fatal(err)
		}
		events, err := Merge(tl)
		if err != nil {
			t.Fatal(err)
		}
		if expect := (Event{2, C}); events[0] != expect {
			t.Errorf("%q: Merge = %v, expect %v", text, events[0], expect)
		}
	}
}

func TestMergeEmpty(t *testing.T) {
	for _, text := range []string{"", "\n\n", "4||\n"} {
		tl, err := ScanString(text, Options{})
		if err != nil {
			t.Errorf("%q: %v", text, err)
			continue
		}
		if _, err := Merge(tl); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("%q: Merge error = %v, expect %v", text, err, ErrEmptyInput)
		}
	}
}

func TestCollapse(t *testing.T) {
	type testcase struct {
		name   string
		events []Event
		notes  []Note
	}
	cases := []testcase{
		{
			name:   "single rest",
			events: []Event{{8, Rest}},
			notes:  []Note{{Rest, 8, Duration{Kind: Quarter}}},
		},
		{
			name:   "rests extend note",
			events: []Event{{4, C}, {8, Rest}, {8, Rest}, {8, Rest}, {8, Rest}},
			notes:  []Note{{C, 4, Duration{Kind: Explicit, Beats: 5}}},
		},
		{
			name:   "repeated pitch starts new note",
			events: []Event{{4, C}, {4, C}, {8, Rest}},
			notes: []Note{
				{C, 4, Duration{Kind: Quarter}},
				{C, 4, Duration{Kind: Half}},
			},
		},
		{
			name:   "leading rest",
			events: []Event{{8, Rest}, {8, Rest}, {3, G}},
			notes: []Note{
				{Rest, 8, Duration{Kind: Half}},
				{G, 3, Duration{Kind: Quarter}},
			},
		},
	}
	for _, c := range cases {
		notes := Collapse(c.events)
		if !reflect.DeepEqual(notes, c.notes) {
			t.Errorf("%s: Collapse = %v, expect %v", c.name, notes, c.notes)
		}
	}
	if notes := Collapse(nil); notes != nil {
		t.Errorf("Collapse(nil) = %v", notes)
	}
}

func TestConvert(t *testing.T) {
	type testcase struct {
		text   string
		output string
	}
	cases := []testcase{
		{"5|--d--|\n4|dd-a-|\n",
			"Q__NOTE(NOTE_D4),Q__NOTE(NOTE_D4),Q__NOTE(NOTE_D5),H__NOTE(NOTE_A4)"},
		{"4|----|\n", "W__NOTE(NOTE_REST)"},
		{"3|------|\n", "WD_NOTE(NOTE_REST)"},
		{"4|c----|\n", "M__NOTE(NOTE_C4, 80)"},
		{"4|c-C--E|\n", "H__NOTE(NOTE_C4),HD_NOTE(NOTE_CS4),Q__NOTE(NOTE_ES4)"},
		{"0|a|\n\n8|G-|\n", "Q__NOTE(NOTE_A0),H__NOTE(NOTE_GS8)"},
	}
	for _, c := range cases {
		out, err := ConvertString(c.text, Options{})
		if err != nil {
			t.Errorf("%q: %v", c.text, err)
			continue
		}
		if out != c.output {
			t.Errorf("%q:\n got %s\nwant %s", c.text, out, c.output)
		}
	}
}

func TestConvertErrors(t *testing.T) {
	type testcase struct {
		text string
		err  error
	}
	cases := []testcase{
		{"", ErrEmptyInput},
		{"q|ab|", ErrMalformedOctaveHeader},
		{"4|ab|\n9|ab|", ErrOctaveOutOfRange},
		{"4|ab|\n3|a|", ErrUnequalSectionWidths},
	}
	for _, c := range cases {
		out, err := ConvertString(c.text, Options{})
		if !errors.Is(err, c.err) {
			t.Errorf("%q: error = %v, expect %v", c.text, err, c.err)
		}
		if out != "" {
			t.Errorf("%q: partial output %q", c.text, out)
		}
	}
}

func readFixture(t *testing.T) string {
	t.Helper()
	data, err := ioutil.ReadFile("testdata/megalovania.tab")
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestConvertGolden(t *testing.T) {
	text := readFixture(t)
	golden, err := ioutil.ReadFile("testdata/megalovania.golden")
	if err != nil {
		t.Fatal(err)
	}
	expect := strings.TrimSpace(string(golden))
	for i := 0; i < 2; i++ {
		out, err := ConvertString(text, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if out != expect {
			t.Fatalf("output differs from testdata/megalovania.golden:\n%s", out)
		}
	}
}

func TestConvertTotalDuration(t *testing.T) {
	texts := []string{
		readFixture(t),
		"5|--d--|\n4|dd-a-|\n",
		"4|-----------------c|\n",
		"4|ab|\n\n3|---|\n\n2|c-------------|\n",
	}
	for _, text := range texts {
		tl, err := ScanString(text, Options{})
		if err != nil {
			t.Fatal(err)
		}
		notes, err := ConvertNotes(strings.NewReader(text), Options{})
		if err != nil {
			t.Fatal(err)
		}
		var ticks int
		for _, n := range notes {
			ticks += n.Duration.Ticks()
		}
		if expect := tl.Len() * TicksPerBeat; ticks != expect {
			t.Errorf("total ticks = %d, expect %d", ticks, expect)
		}
	}
}

func TestConvertAllRests(t *testing.T) {
	notes, err := ConvertNotes(strings.NewReader("7|--|\n2|--|\n"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	expect := []Note{{Rest, NumOctaves - 1, Duration{Kind: Half}}}
	if !reflect.DeepEqual(notes, expect) {
		t.Errorf("notes = %v, expect %v", notes, expect)
	}
}
