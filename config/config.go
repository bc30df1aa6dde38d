// Package config loads lettertab project configuration.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/sirupsen/logrus"

	"moria.us/lettertab/midi"
	"moria.us/lettertab/tab"
)

// DefaultFile is the name of the configuration file looked for next to the
// input tablature.
const DefaultFile = "lettertab.json"

// Output formats.
const (
	FormatMacro = "macro"
	FormatMIDI  = "midi"
	FormatWire  = "wire"
)

// DefaultPort is the port the development server listens on.
const DefaultPort = 9013

// IsFormat returns true if the name is a known output format.
func IsFormat(name string) bool {
	switch name {
	case FormatMacro, FormatMIDI, FormatWire:
		return true
	}
	return false
}

// MIDI contains the settings for MIDI output.
type MIDI struct {
	Tempo    float64 `json:"tempo"`
	Program  int     `json:"program"`
	Velocity int     `json:"velocity"`
}

// Serve contains the settings for the development server.
type Serve struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// A Config contains the conversion settings.
type Config struct {
	PadShortLines bool   `json:"padShortLines"`
	Format        string `json:"format"`
	Output        string `json:"output"`
	MIDI          MIDI   `json:"midi"`
	Serve         Serve  `json:"serve"`
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		Format: FormatMacro,
		MIDI: MIDI{
			Tempo:    midi.DefaultOptions.Tempo,
			Velocity: int(midi.DefaultOptions.Velocity),
		},
		Serve: Serve{
			Host: "localhost",
			Port: DefaultPort,
		},
	}
}

// Load loads the configuration file. Fields missing from the file keep their
// default values. Invalid values are reported as warnings and replaced with
// defaults.
func Load(filename string) (*Config, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	c := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("invalid config %q: %v", filename, err)
	}
	c.check(logrus.StandardLogger().WithField("config", filename))
	return c, nil
}

// LoadOptional is like Load, but returns the default configuration if the
// file does not exist.
func LoadOptional(filename string) (*Config, error) {
	c, err := Load(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return c, nil
}

func (c *Config) check(log logrus.FieldLogger) {
	d := Default()
	if !IsFormat(c.Format) {
		log.Warnf("unknown format: %q", c.Format)
		c.Format = d.Format
	}
	if !(c.MIDI.Tempo > 0) {
		log.Warnf("invalid 'midi.tempo': %v", c.MIDI.Tempo)
		c.MIDI.Tempo = d.MIDI.Tempo
	}
	if c.MIDI.Program < 0 || 127 < c.MIDI.Program {
		log.Warnf("invalid 'midi.program': %d", c.MIDI.Program)
		c.MIDI.Program = d.MIDI.Program
	}
	if c.MIDI.Velocity < 1 || 127 < c.MIDI.Velocity {
		log.Warnf("invalid 'midi.velocity': %d", c.MIDI.Velocity)
		c.MIDI.Velocity = d.MIDI.Velocity
	}
	if c.Serve.Port < 0 || 0xffff < c.Serve.Port {
		log.Warnf("invalid 'serve.port': %d", c.Serve.Port)
		c.Serve.Port = d.Serve.Port
	}
}

// Validate returns an error if any setting is out of range.
func (c *Config) Validate() error {
	switch {
	case !IsFormat(c.Format):
		return fmt.Errorf("unknown format: %q", c.Format)
	case !(c.MIDI.Tempo > 0):
		return fmt.Errorf("invalid MIDI tempo: %v", c.MIDI.Tempo)
	case c.MIDI.Program < 0 || 127 < c.MIDI.Program:
		return fmt.Errorf("MIDI program out of range: %d", c.MIDI.Program)
	case c.MIDI.Velocity < 1 || 127 < c.MIDI.Velocity:
		return fmt.Errorf("MIDI velocity out of range: %d", c.MIDI.Velocity)
	case c.Serve.Port < 0 || 0xffff < c.Serve.Port:
		return fmt.Errorf("port out of range: %d", c.Serve.Port)
	}
	return nil
}

// TabOptions returns the options for scanning tablature.
func (c *Config) TabOptions() tab.Options {
	return tab.Options{PadShortLines: c.PadShortLines}
}

// MIDIOptions returns the options for MIDI export.
func (c *Config) MIDIOptions() midi.Options {
	return midi.Options{
		Tempo:    c.MIDI.Tempo,
		Program:  uint8(c.MIDI.Program),
		Velocity: uint8(c.MIDI.Velocity),
	}
}
