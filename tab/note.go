package tab

import "strings"

// An Event is one beat column of the merged melodic line.
type Event struct {
	Octave int
	Pitch  Pitch
}

// A Note is a pitch held for a duration. Notes are played back to back; a
// note starts when the previous one finishes.
type Note struct {
	Pitch    Pitch
	Octave   int
	Duration Duration
}

// Macro renders the note as a firmware macro call, such as Q__NOTE(NOTE_C4)
// or M__NOTE(NOTE_C4, 80).
func (n Note) Macro() string {
	var b strings.Builder
	n.writeMacro(&b)
	return b.String()
}

func (n Note) writeMacro(b *strings.Builder) {
	b.WriteString(n.Duration.Macro())
	b.WriteByte('(')
	b.WriteString(n.Pitch.Symbol(n.Octave))
	if n.Duration.Kind == Explicit {
		b.WriteString(", ")
		b.WriteString(itoa(n.Duration.Ticks()))
	}
	b.WriteByte(')')
}

// Render joins the macro calls for a note sequence with commas.
func Render(notes []Note) string {
	var b strings.Builder
	for i, n := range notes {
		if i != 0 {
			b.WriteByte(',')
		}
		n.writeMacro(&b)
	}
	return b.String()
}
