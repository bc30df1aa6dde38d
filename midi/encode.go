// Package midi writes melodies as Standard MIDI Files and reads them back.
package midi

import (
	"errors"
	"io"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"moria.us/lettertab/tab"
)

// Resolution is the number of MIDI ticks per beat column.
const Resolution = 96

// Options controls MIDI export.
type Options struct {
	Tempo    float64 // Beat columns per minute.
	Program  uint8
	Velocity uint8
	Channel  uint8
}

// DefaultOptions is used for zero fields in Options.
var DefaultOptions = Options{
	Tempo:    120,
	Velocity: 100,
}

func (o Options) withDefaults() Options {
	if o.Tempo <= 0 {
		o.Tempo = DefaultOptions.Tempo
	}
	if o.Velocity == 0 {
		o.Velocity = DefaultOptions.Velocity
	}
	return o
}

func (o Options) validate() error {
	switch {
	case o.Program > 127:
		return errors.New("program out of range")
	case o.Velocity > 127:
		return errors.New("velocity out of range")
	case o.Channel > 15:
		return errors.New("channel out of range")
	}
	return nil
}

// Encode writes the notes as a single track MIDI file. Each beat column is a
// quarter note. Rests advance time without sounding.
func Encode(w io.Writer, notes []tab.Note, opts Options) error {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return err
	}
	var tr smf.Track
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(opts.Tempo))
	tr.Add(0, gomidi.ProgramChange(opts.Channel, opts.Program))
	var delta uint32
	for _, n := range notes {
		length := uint32(n.Duration.Ticks() * Resolution / tab.TicksPerBeat)
		key, ok := Key(n.Pitch, n.Octave)
		if !ok {
			delta += length
			continue
		}
		tr.Add(delta, gomidi.NoteOn(opts.Channel, key, opts.Velocity))
		tr.Add(length, gomidi.NoteOff(opts.Channel, key))
		delta = 0
	}
	tr.Close(delta)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(Resolution)
	if err := s.Add(tr); err != nil {
		return err
	}
	_, err := s.WriteTo(w)
	return err
}
