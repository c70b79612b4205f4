package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/todoreview/internal/engine"
	"github.com/phyten/todoreview/internal/execx"
	"github.com/phyten/todoreview/internal/link"
)

// editorEnv is consulted in order when --editor is not given.
var editorEnv = []string{"TODOREVIEW_EDITOR", "VISUAL", "EDITOR"}

type openFlags struct {
	configFlags
	editor  string
	print   bool
	url     string
	browser bool
}

func newOpenCommand(a *app) *cobra.Command {
	f := &openFlags{}
	cmd := &cobra.Command{
		Use:   "open ID [roots...]",
		Short: "Open the location of a listed item in an editor",
		Long: `open rescans the roots with the same settings as scan and jumps to the
item with the given ID (the first column of the table). The editor is taken
from --editor, $TODOREVIEW_EDITOR, $VISUAL or $EDITOR in that order.`,
		Example: `  todoreview open 3
  todoreview open 3 ./src --tag NOTE --editor "code --wait"
  todoreview open 3 --print
  todoreview open 3 --url=vscode`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd, a, f, args)
		},
	}
	f.configFlags.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&f.editor, "editor", "", "editor command, may include flags")
	fl.BoolVar(&f.print, "print", false, "print path:line instead of opening it")
	fl.StringVar(&f.url, "url", "", "print a URL instead of opening it: "+strings.Join(link.Schemes, "|"))
	fl.Lookup("url").NoOptDefVal = "file"
	fl.BoolVar(&f.browser, "browser", false, "open the --url (default file) with the system handler")
	cmd.MarkFlagsMutuallyExclusive("print", "url")
	cmd.MarkFlagsMutuallyExclusive("print", "browser")
	cmd.MarkFlagsMutuallyExclusive("editor", "print")
	return cmd
}

func runOpen(cmd *cobra.Command, a *app, f *openFlags, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		return fmt.Errorf("%w: ID must be a positive number, got %q", errUsage, args[0])
	}
	flagLayer, err := f.layer(cmd, args[1:])
	if err != nil {
		return err
	}
	s, err := resolveSettings(a, f.configPath, flagLayer)
	if err != nil {
		return err
	}
	res, err := engine.Run(cmd.Context(), s.scan, engine.Options{
		FS:      a.fs,
		Logger:  s.log,
		Home:    a.home,
		WorkDir: a.cwd,
		LogTag:  appName,
	})
	if err != nil {
		return err
	}
	if res.Canceled {
		return errCanceled
	}
	rec, ok := res.Lookup(id)
	if !ok {
		return fmt.Errorf("no item #%d (the scan found %d)", id, res.Total)
	}
	s.log.Debugf("%s: #%d is %s", appName, id, link.Location(rec.File, rec.Line))

	switch {
	case f.print:
		_, err := fmt.Fprintln(a.stdout, link.Location(rec.File, rec.Line))
		return err
	case f.url != "" || f.browser:
		scheme := f.url
		if scheme == "" {
			scheme = "file"
		}
		u, err := link.URL(scheme, rec.File, rec.Line)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		if !f.browser {
			_, err := fmt.Fprintln(a.stdout, u)
			return err
		}
		if a.openURL == nil {
			return fmt.Errorf("no URL handler available")
		}
		return a.openURL(u)
	}

	editor := f.editor
	for _, key := range editorEnv {
		if editor != "" {
			break
		}
		editor = strings.TrimSpace(a.getenv(key))
	}
	if editor == "" {
		return fmt.Errorf("%w: no editor configured, set $EDITOR or use --print", errUsage)
	}
	name, editorArgs, err := link.EditorCommand(editor, rec.File, rec.Line)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	runner := a.runner
	if runner == nil {
		runner = execx.DefaultRunner()
	}
	if _, stderr, err := runner.Run(cmd.Context(), "", name, editorArgs...); err != nil {
		if execx.IsNotFound(err) {
			return fmt.Errorf("editor %q not found: %w", name, err)
		}
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
