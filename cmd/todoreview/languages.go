package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/todoreview/internal/detect"
	"github.com/phyten/todoreview/internal/termcolor"
)

func newLanguagesCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the language names accepted by --lang",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := detect.Names()
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(names)
			}
			width := 80
			if w := termcolor.Width(a.stdout); w > 0 {
				width = w
			}
			var line strings.Builder
			for _, name := range names {
				if line.Len() > 0 && line.Len()+1+len(name) > width {
					if _, err := fmt.Fprintln(a.stdout, line.String()); err != nil {
						return err
					}
					line.Reset()
				}
				if line.Len() > 0 {
					line.WriteByte(' ')
				}
				line.WriteString(name)
			}
			if line.Len() > 0 {
				_, err := fmt.Fprintln(a.stdout, line.String())
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the names as a JSON array")
	return cmd
}
