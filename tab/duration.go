package tab

import "strconv"

// TicksPerBeat is the firmware length of one beat column.
const TicksPerBeat = 16

// A DurationKind identifies a named note length, or Explicit.
type DurationKind uint8

const (
	Quarter DurationKind = iota
	QuarterDot
	Half
	HalfDot
	Whole
	WholeDot
	Breve
	BreveDot
	Explicit
)

var durationMacros = [...]string{
	Quarter:    "Q__NOTE",
	QuarterDot: "QD_NOTE",
	Half:       "H__NOTE",
	HalfDot:    "HD_NOTE",
	Whole:      "W__NOTE",
	WholeDot:   "WD_NOTE",
	Breve:      "B__NOTE",
	BreveDot:   "BD_NOTE",
	Explicit:   "M__NOTE",
}

var durationTicks = [...]int{
	Quarter:    16,
	QuarterDot: 24,
	Half:       32,
	HalfDot:    48,
	Whole:      64,
	WholeDot:   96,
	Breve:      128,
	BreveDot:   192,
}

// A Duration is the length of a note. Named kinds carry their length
// implicitly; Beats is only meaningful for Explicit.
type Duration struct {
	Kind  DurationKind
	Beats int
}

// DurationFromBeats returns the named duration for a beat count, or an
// explicit duration if there is no name for it.
func DurationFromBeats(beats int) Duration {
	return Duration{Kind: Explicit, Beats: beats}.Normalize()
}

// Normalize replaces an explicit duration with the equivalent named duration,
// if there is one.
func (d Duration) Normalize() Duration {
	if d.Kind != Explicit {
		return d
	}
	switch d.Beats {
	case 1:
		return Duration{Kind: Quarter}
	case 2:
		return Duration{Kind: Half}
	case 3:
		return Duration{Kind: HalfDot}
	case 4:
		return Duration{Kind: Whole}
	case 6:
		return Duration{Kind: WholeDot}
	case 8:
		return Duration{Kind: Breve}
	case 12:
		return Duration{Kind: BreveDot}
	}
	return d
}

// Ticks returns the length in firmware ticks.
func (d Duration) Ticks() int {
	if d.Kind == Explicit {
		return d.Beats * TicksPerBeat
	}
	if int(d.Kind) >= len(durationTicks) {
		return 0
	}
	return durationTicks[d.Kind]
}

// Macro returns the name of the firmware macro for notes of this length.
func (d Duration) Macro() string {
	if int(d.Kind) >= len(durationMacros) {
		return durationMacros[Explicit]
	}
	return durationMacros[d.Kind]
}

func (d Duration) String() string {
	if d.Kind == Explicit {
		return strconv.Itoa(d.Beats) + " beats"
	}
	return d.Macro()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
