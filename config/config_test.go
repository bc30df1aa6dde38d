package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), DefaultFile)
	if err := ioutil.WriteFile(name, []byte(text), 0666); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestLoad(t *testing.T) {
	name := writeConfig(t, `{
		"padShortLines": true,
		"format": "midi",
		"midi": {"tempo": 90, "program": 12}
	}`)
	c, err := Load(name)
	if err != nil {
		t.Fatal(err)
	}
	if !c.PadShortLines {
		t.Error("padShortLines not set")
	}
	if c.Format != FormatMIDI {
		t.Errorf("format = %q", c.Format)
	}
	o := c.MIDIOptions()
	if o.Tempo != 90 || o.Program != 12 || o.Velocity != 100 {
		t.Errorf("MIDIOptions = %+v", o)
	}
	if c.Serve.Port != DefaultPort {
		t.Errorf("port = %d, expect %d", c.Serve.Port, DefaultPort)
	}
	if !c.TabOptions().PadShortLines {
		t.Error("TabOptions().PadShortLines not set")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	name := writeConfig(t, `{"format": "wav", "midi": {"tempo": -1, "velocity": 300}}`)
	c, err := Load(name)
	if err != nil {
		t.Fatal(err)
	}
	d := Default()
	if c.Format != d.Format || c.MIDI.Tempo != d.MIDI.Tempo || c.MIDI.Velocity != d.MIDI.Velocity {
		t.Errorf("invalid values not replaced: %+v", c)
	}
}

func TestLoadUnknownField(t *testing.T) {
	name := writeConfig(t, `{"tempo": 120}`)
	if _, err := Load(name); err == nil {
		t.Error("Load: ok (expect err)")
	}
}

func TestLoadOptional(t *testing.T) {
	c, err := LoadOptional(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatal(err)
	}
	if c.Format != FormatMacro {
		t.Errorf("format = %q", c.Format)
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config: %v", err)
	}
	for _, f := range []func(c *Config){
		func(c *Config) { c.Format = "wav" },
		func(c *Config) { c.MIDI.Tempo = 0 },
		func(c *Config) { c.MIDI.Program = 128 },
		func(c *Config) { c.MIDI.Velocity = 0 },
		func(c *Config) { c.Serve.Port = 70000 },
	} {
		c := Default()
		f(c)
		if err := c.Validate(); err == nil {
			t.Errorf("Validate(%+v): ok (expect err)", c)
		}
	}
}
