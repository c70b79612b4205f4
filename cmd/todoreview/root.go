package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errUsage = errors.New("usage error")

// newRootCommand builds the CLI. Running it without a subcommand scans, so
// "todoreview ." and "todoreview scan ." are equivalent.
func newRootCommand(a *app) *cobra.Command {
	f := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "todoreview [roots...]",
		Short: "Collect TODO-style annotations from source trees",
		Long: `todoreview walks one or more directory trees, finds annotation comments
such as TODO and FIXME, and lists them ordered by their priority token, e.g. "(1)".

With no roots the working directory is scanned.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, a, f, args)
		},
	}
	f.register(cmd)

	cmd.AddCommand(newScanCommand(a))
	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newPresetsCommand(a))
	cmd.AddCommand(newLanguagesCommand(a))
	cmd.AddCommand(newOpenCommand(a))
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd
}

func newScanCommand(a *app) *cobra.Command {
	f := &scanFlags{}
	cmd := &cobra.Command{
		Use:   "scan [roots...]",
		Short: "Scan roots and print the collected annotations",
		Example: `  todoreview scan
  todoreview scan ./src ./docs --tag NOTE --exclude 'vendor'
  todoreview scan main.go --output json
  todoreview scan --group --preset typical`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, a, f, args)
		},
	}
	f.register(cmd)
	return cmd
}
