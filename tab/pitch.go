package tab

// NumOctaves is the number of staff lines a tablature can address. Octave
// selectors are the digits 0 through NumOctaves-1.
const NumOctaves = 9

// A Pitch is a scale degree, or a rest.
type Pitch uint8

// Pitch values. Sharps are written in the tablature as the upper-case form of
// the natural's letter.
const (
	Rest Pitch = iota
	A
	ASharp
	B
	BSharp
	C
	CSharp
	D
	DSharp
	E
	ESharp
	F
	FSharp
	G
	GSharp
)

var pitchNames = [...]string{
	Rest:   "-",
	A:      "A",
	ASharp: "A#",
	B:      "B",
	BSharp: "B#",
	C:      "C",
	CSharp: "C#",
	D:      "D",
	DSharp: "D#",
	E:      "E",
	ESharp: "E#",
	F:      "F",
	FSharp: "F#",
	G:      "G",
	GSharp: "G#",
}

var pitchSymbols = [...]string{
	Rest:   "NOTE_REST",
	A:      "NOTE_A",
	ASharp: "NOTE_AS",
	B:      "NOTE_B",
	BSharp: "NOTE_BS",
	C:      "NOTE_C",
	CSharp: "NOTE_CS",
	D:      "NOTE_D",
	DSharp: "NOTE_DS",
	E:      "NOTE_E",
	ESharp: "NOTE_ES",
	F:      "NOTE_F",
	FSharp: "NOTE_FS",
	G:      "NOTE_G",
	GSharp: "NOTE_GS",
}

// Semitone offsets from C. B# and E# are enharmonic with C (one octave up)
// and F.
var pitchSemitones = [...]int{
	A:      9,
	ASharp: 10,
	B:      11,
	BSharp: 12,
	C:      0,
	CSharp: 1,
	D:      2,
	DSharp: 3,
	E:      4,
	ESharp: 5,
	F:      5,
	FSharp: 6,
	G:      7,
	GSharp: 8,
}

// PitchFromChar returns the pitch written as c in a staff line body.
func PitchFromChar(c rune) Pitch {
	switch {
	case 'a' <= c && c <= 'g':
		return naturalPitch(c - 'a')
	case 'A' <= c && c <= 'G':
		return naturalPitch(c-'A') + 1
	default:
		return Rest
	}
}

func naturalPitch(i rune) Pitch {
	return A + Pitch(2*i)
}

func (p Pitch) valid() bool {
	return int(p) < len(pitchNames)
}

// String returns the pitch name, such as "C#", or "-" for a rest.
func (p Pitch) String() string {
	if !p.valid() {
		return "<invalid>"
	}
	return pitchNames[p]
}

// Symbol returns the firmware name of the pitch in the given octave, such as
// NOTE_CS4. Rests have no register and render as NOTE_REST.
func (p Pitch) Symbol(octave int) string {
	if p == Rest || !p.valid() {
		return pitchSymbols[Rest]
	}
	return pitchSymbols[p] + itoa(octave)
}

// Semitone returns the number of semitones above C within the octave. The
// result is 12 for B#. Rests return -1.
func (p Pitch) Semitone() int {
	if p == Rest || !p.valid() {
		return -1
	}
	return pitchSemitones[p]
}
