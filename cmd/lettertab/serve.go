package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"moria.us/lettertab/config"
	"moria.us/lettertab/devserver"
	"moria.us/lettertab/watcher"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	var cf convertFlags
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "serve file",
		Short: "Serve a live preview of a file while it is edited",
		Long: `Serve a live preview of a file while it is edited.

The server provides the note macros at /, a MIDI file at /song.mid, the
binary note stream at /notes.bin, and a websocket at /socket which sends
the conversion result every time the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd.Flags(), g, &cf, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				c.Serve.Host = host
			}
			if cmd.Flags().Changed("port") {
				c.Serve.Port = port
				if err := c.Validate(); err != nil {
					return err
				}
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			ch, err := watcher.Watch(ctx, args[0], c.TabOptions())
			if err != nil {
				return err
			}
			s := devserver.New(c.MIDIOptions())
			go s.Watch(ch)
			err = s.ListenAndServe(ctx, c.Serve.Host, c.Serve.Port)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	fs := cmd.Flags()
	cf.register(fs)
	fs.StringVar(&host, "host", "localhost", "host to serve from, or * to bind to all local addresses")
	fs.IntVar(&port, "port", config.DefaultPort, "port to serve from")
	return cmd
}
