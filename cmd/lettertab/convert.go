package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"moria.us/lettertab/config"
	"moria.us/lettertab/midi"
	"moria.us/lettertab/tab"
	"moria.us/lettertab/wire"
)

const configHelp = config.DefaultFile + " next to the input"

// convertFlags are the command-line overrides for the configuration file.
type convertFlags struct {
	format        string
	output        string
	padShortLines bool
	tempo         float64
	program       int
	velocity      int
}

func (f *convertFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.format, "format", "f", config.FormatMacro, "output format: macro, midi, or wire")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: standard output)")
	fs.BoolVar(&f.padShortLines, "pad-short-lines", false, "pad short staff lines with rests instead of failing")
	fs.Float64Var(&f.tempo, "tempo", midi.DefaultOptions.Tempo, "MIDI tempo, in beat columns per minute")
	fs.IntVar(&f.program, "program", 0, "MIDI program number")
	fs.IntVar(&f.velocity, "velocity", int(midi.DefaultOptions.Velocity), "MIDI note velocity")
}

// loadConfig loads the configuration for converting input, and applies flags
// set on the command line.
func loadConfig(fs *pflag.FlagSet, g *globalFlags, f *convertFlags, input string) (*config.Config, error) {
	var c *config.Config
	var err error
	if g.config != "" {
		c, err = config.Load(g.config)
	} else {
		dir := "."
		if input != "" && input != "-" {
			dir = filepath.Dir(input)
		}
		c, err = config.LoadOptional(filepath.Join(dir, config.DefaultFile))
	}
	if err != nil {
		return nil, err
	}
	if fs.Changed("format") {
		c.Format = f.format
	}
	if fs.Changed("output") {
		c.Output = f.output
	}
	if fs.Changed("pad-short-lines") {
		c.PadShortLines = f.padShortLines
	}
	if fs.Changed("tempo") {
		c.MIDI.Tempo = f.tempo
	}
	if fs.Changed("program") {
		c.MIDI.Program = f.program
	}
	if fs.Changed("velocity") {
		c.MIDI.Velocity = f.velocity
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func openInput(input string) (io.ReadCloser, error) {
	if input == "" || input == "-" {
		if isTerminal(os.Stdin.Fd()) {
			logrus.Infoln("Reading tablature from standard input.")
		}
		return ioutil.NopCloser(os.Stdin), nil
	}
	return os.Open(input)
}

// encode formats the notes for output.
func encode(c *config.Config, notes []tab.Note) ([]byte, error) {
	var b bytes.Buffer
	switch c.Format {
	case config.FormatMacro:
		b.WriteString(tab.Render(notes))
		b.WriteByte('\n')
	case config.FormatMIDI:
		if err := midi.Encode(&b, notes, c.MIDIOptions()); err != nil {
			return nil, err
		}
	case config.FormatWire:
		if err := wire.WriteMessage(&b, notes); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format: %q", c.Format)
	}
	return b.Bytes(), nil
}

func writeOutput(c *config.Config, data []byte) error {
	if c.Output == "" || c.Output == "-" {
		if c.Format != config.FormatMacro && isTerminal(os.Stdout.Fd()) {
			return errors.New("refusing to write binary output to a terminal, use --output")
		}
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := ioutil.WriteFile(c.Output, data, 0666); err != nil {
		return err
	}
	logrus.Infoln("Output:", c.Output)
	return nil
}

func inputError(input string, err error) error {
	if input == "" || input == "-" {
		return err
	}
	var e *tab.Error
	if errors.As(err, &e) {
		return fmt.Errorf("%s:%w", input, err)
	}
	return fmt.Errorf("%s: %w", input, err)
}

func runConvert(cmd *cobra.Command, g *globalFlags, f *convertFlags, input string) error {
	c, err := loadConfig(cmd.Flags(), g, f, input)
	if err != nil {
		return err
	}
	r, err := openInput(input)
	if err != nil {
		return err
	}
	defer r.Close()
	notes, err := tab.ConvertNotes(r, c.TabOptions())
	if err != nil {
		return inputError(input, err)
	}
	logrus.Debugf("Converted %d notes", len(notes))
	data, err := encode(c, notes)
	if err != nil {
		return err
	}
	return writeOutput(c, data)
}
