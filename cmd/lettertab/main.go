// Command lettertab converts letter tablature into firmware note macros.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	config  string
	verbose bool
}

func newRootCommand() *cobra.Command {
	var g globalFlags
	var cf convertFlags
	cmd := &cobra.Command{
		Use:   "lettertab [file]",
		Short: "Convert letter tablature into firmware note macros",
		Long: `Convert letter tablature into firmware note macros.

Reads the tablature from the file, or from standard input if no file is given
or the file is "-", and writes a comma-separated list of note macros.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) != 0 {
				input = args[0]
			}
			return runConvert(cmd, &g, &cf, input)
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&g.config, "config", "", "configuration file (default: "+configHelp+")")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	cf.register(cmd.Flags())
	cmd.AddCommand(
		newWatchCommand(&g),
		newServeCommand(&g),
		newDumpCommand(),
	)
	return cmd
}

func mainE() error {
	return newRootCommand().Execute()
}

func main() {
	if err := mainE(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
