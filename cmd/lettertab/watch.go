package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"moria.us/lettertab/watcher"
)

func newWatchCommand(g *globalFlags) *cobra.Command {
	var cf convertFlags
	cmd := &cobra.Command{
		Use:   "watch file",
		Short: "Convert a file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, g, &cf, args[0])
		},
	}
	cf.register(cmd.Flags())
	return cmd
}

func runWatch(cmd *cobra.Command, g *globalFlags, f *convertFlags, input string) error {
	c, err := loadConfig(cmd.Flags(), g, f, input)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ch, err := watcher.Watch(ctx, input, c.TabOptions())
	if err != nil {
		return err
	}
	for s := range ch {
		if s.Err != nil {
			// Already logged by the watcher.
			continue
		}
		data, err := encode(c, s.Notes)
		if err != nil {
			logrus.Errorln("Encode:", err)
			continue
		}
		if err := writeOutput(c, data); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
