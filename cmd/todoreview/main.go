package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/browser"

	"github.com/phyten/todoreview/internal/engine"
	"github.com/phyten/todoreview/internal/execx"
	"github.com/phyten/todoreview/internal/fsys"
)

// version is replaced at build time via -ldflags "-X main.version=...".
var version = "dev"

const (
	exitError    = 1
	exitUsage    = 2
	exitCanceled = 130
)

var errCanceled = errors.New("scan canceled")

// app carries the process environment so commands can be driven from tests.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	getenv  func(string) string
	environ func() []string
	fs      fsys.FS
	home    string
	cwd     string
	openURL func(string) error
	runner  execx.Runner
}

func newApp() *app {
	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	return &app{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		getenv:  os.Getenv,
		environ: os.Environ,
		fs:      fsys.OS(),
		home:    home,
		cwd:     cwd,
		openURL: browser.OpenURL,
		runner:  execx.CommandRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp()
	root := newRootCommand(a)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.stderr, "todoreview: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var cfgErr *engine.ConfigurationError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errCanceled):
		return exitCanceled
	case errors.As(err, &cfgErr), errors.Is(err, errUsage):
		return exitUsage
	default:
		return exitError
	}
}
