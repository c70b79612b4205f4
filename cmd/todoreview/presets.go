package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/todoreview/internal/pathfilter"
	"github.com/phyten/todoreview/internal/textutil"
)

func newPresetsCommand(a *app) *cobra.Command {
	var asJSON bool
	var verbose bool
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the baseline exclusion presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := pathfilter.PresetNames()
			if asJSON {
				out := make(map[string][]string, len(names))
				for _, name := range names {
					out[name] = pathfilter.Preset(name).Patterns()
				}
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			width := 0
			for _, name := range names {
				width = max(width, textutil.VisibleWidth(name))
			}
			for _, name := range names {
				patterns := pathfilter.Preset(name).Patterns()
				summary := fmt.Sprintf("%d patterns", len(patterns))
				if verbose && len(patterns) > 0 {
					summary = strings.Join(patterns, " ")
				}
				if name == string(pathfilter.PresetDefault) {
					summary += " (default)"
				}
				if _, err := fmt.Fprintf(a.stdout, "%s  %s\n", textutil.PadRight(name, width), summary); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print presets and their patterns as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every pattern")
	return cmd
}
