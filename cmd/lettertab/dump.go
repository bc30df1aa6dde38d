package main

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"moria.us/lettertab/midi"
)

func newDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump file.mid...",
		Short: "List the notes in MIDI files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed bool
			for _, arg := range args {
				if err := dumpFile(cmd.OutOrStdout(), arg); err != nil {
					logrus.Errorf("file %q: %v", arg, err)
					failed = true
				}
			}
			if failed {
				return errors.New("could not read all files")
			}
			return nil
		},
	}
}

func dumpFile(w io.Writer, name string) error {
	data, err := ioutil.ReadFile(name)
	if err != nil {
		return err
	}
	f, err := midi.Parse(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: format %d, %d tracks, %d ticks per quarter note\n",
		name, f.Head.Format, f.Head.NumTracks, f.Head.Division)
	for i, ns := range f.Tracks {
		fmt.Fprintln(w, "Track:", i)
		for _, n := range ns {
			fmt.Fprintf(w, "  %6d %-4s +%d ch.%d vel.%d\n",
				n.Time, midi.NoteName(n.Value), n.Duration, n.Channel, n.Velocity)
		}
	}
	return nil
}
