package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/todoreview/internal/config"
	"github.com/phyten/todoreview/internal/engine"
	engineopts "github.com/phyten/todoreview/internal/engine/opts"
	"github.com/phyten/todoreview/internal/logger"
	"github.com/phyten/todoreview/internal/output"
	"github.com/phyten/todoreview/internal/pathfilter"
	"github.com/phyten/todoreview/internal/progress"
	"github.com/phyten/todoreview/internal/termcolor"
)

const appName = "todoreview"

// configFlags are the scan settings shared by scan and serve.
type configFlags struct {
	configPath      string
	tags            []string
	markers         []string
	priorityPattern string
	caseSensitive   bool
	ignoreCase      bool
	excludes        []string
	includes        []string
	preset          string
	maxFileBytes    int
	langs           []string
	logLevel        string
	verbose         bool
	quiet           bool
}

type scanFlags struct {
	configFlags
	output     string
	fields     string
	color      string
	group      bool
	line       bool
	noLine     bool
	width      int
	progress   bool
	noProgress bool
}

func (f *configFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "config file (default: .todoreview.* from the first root upward)")
	fl.StringSliceVarP(&f.tags, "tag", "t", nil, "tags to look for, NAME or NAME=regex (repeatable, comma separated)")
	fl.StringArrayVar(&f.markers, "marker", nil, "NAME=regex marker taken verbatim (repeatable)")
	fl.StringVar(&f.priorityPattern, "priority-pattern", "", "regex for the priority token (default \"(N)\" with one or two digits)")
	fl.BoolVar(&f.caseSensitive, "case-sensitive", false, "match markers case-sensitively")
	fl.BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "match markers case-insensitively (default)")
	fl.StringSliceVarP(&f.excludes, "exclude", "x", nil, "glob of names to skip (repeatable)")
	fl.StringSliceVar(&f.includes, "include", nil, "glob of file names to scan exclusively (repeatable)")
	fl.StringVar(&f.preset, "preset", "", "baseline exclusions: "+strings.Join(pathfilter.PresetNames(), "|"))
	fl.IntVar(&f.maxFileBytes, "max-file-bytes", 0, "skip files larger than this (0 = unlimited)")
	fl.StringSliceVar(&f.langs, "lang", nil, "only scan files detected as these languages, e.g. go,python (see `languages`)")
	fl.StringVar(&f.logLevel, "log-level", "", "trace|debug|info|warn|error")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "shortcut for --log-level debug")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "shortcut for --log-level error")
	cmd.MarkFlagsMutuallyExclusive("case-sensitive", "ignore-case")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet", "log-level")
}

func (f *scanFlags) register(cmd *cobra.Command) {
	f.configFlags.register(cmd)
	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "output format: "+strings.Join(engineopts.Outputs, "|"))
	fl.StringVar(&f.fields, "fields", "", "columns for tsv/csv/markdown: "+strings.Join(output.FieldNames(), ","))
	fl.StringVar(&f.color, "color", "", "auto|always|never")
	fl.BoolVarP(&f.group, "group", "g", false, "group the table by tag")
	fl.BoolVar(&f.line, "line", false, "show line numbers in the table (default)")
	fl.BoolVar(&f.noLine, "no-line", false, "hide line numbers in the table")
	fl.IntVar(&f.width, "width", 0, "truncate table lines to this width (0 = terminal width, -1 = never)")
	fl.BoolVar(&f.progress, "progress", false, "force the progress line even when stderr is not a terminal")
	fl.BoolVar(&f.noProgress, "no-progress", false, "disable the progress line")
	cmd.MarkFlagsMutuallyExclusive("line", "no-line")
	cmd.MarkFlagsMutuallyExclusive("progress", "no-progress")
}

// layer turns the flags the user actually set into a config layer. roots
// come from positional arguments.
func (f *configFlags) layer(cmd *cobra.Command, roots []string) (config.Config, error) {
	var c config.Config
	fl := cmd.Flags()
	if len(roots) > 0 {
		r := slices.Clone(roots)
		c.Scan.Roots = &r
	}
	if fl.Changed("tag") {
		t := slices.Clone(f.tags)
		c.Scan.Tags = &t
	}
	if fl.Changed("marker") {
		m, err := engineopts.MarkersFromTags(f.markers)
		if err != nil {
			return c, fmt.Errorf("%w: --marker: %v", errUsage, err)
		}
		c.Scan.Markers = &m
	}
	if fl.Changed("priority-pattern") {
		c.Scan.PriorityPattern = &f.priorityPattern
	}
	if fl.Changed("case-sensitive") {
		c.Scan.CaseSensitive = &f.caseSensitive
	}
	if fl.Changed("ignore-case") {
		v := !f.ignoreCase
		c.Scan.CaseSensitive = &v
	}
	if fl.Changed("exclude") {
		x := slices.Clone(f.excludes)
		c.Scan.Excludes = &x
	}
	if fl.Changed("include") {
		x := slices.Clone(f.includes)
		c.Scan.Includes = &x
	}
	if fl.Changed("preset") {
		c.Scan.Preset = &f.preset
	}
	if fl.Changed("max-file-bytes") {
		c.Scan.MaxFileBytes = &f.maxFileBytes
	}
	if fl.Changed("lang") {
		l := slices.Clone(f.langs)
		c.Scan.Languages = &l
	}
	switch {
	case fl.Changed("log-level"):
		c.UI.LogLevel = &f.logLevel
	case f.verbose:
		level := "debug"
		c.UI.LogLevel = &level
	case f.quiet:
		level := "error"
		c.UI.LogLevel = &level
	}
	return c, nil
}

func (f *scanFlags) layer(cmd *cobra.Command, roots []string) (config.Config, error) {
	c, err := f.configFlags.layer(cmd, roots)
	if err != nil {
		return c, err
	}
	fl := cmd.Flags()
	if fl.Changed("output") {
		c.UI.Output = &f.output
	}
	if fl.Changed("fields") {
		c.UI.Fields = &f.fields
	}
	if fl.Changed("color") {
		c.UI.Color = &f.color
	}
	if fl.Changed("group") {
		c.UI.Group = &f.group
	}
	if fl.Changed("line") {
		c.UI.ShowLine = &f.line
	}
	if fl.Changed("no-line") {
		v := !f.noLine
		c.UI.ShowLine = &v
	}
	if fl.Changed("progress") {
		c.UI.Progress = &f.progress
	}
	return c, nil
}

// settings is the merged view of defaults, config file, environment and flags.
type settings struct {
	scan       engine.Config
	ui         config.UISettings
	log        *logger.ConsoleLogger
	configPath string
}

// resolveSettings merges defaults < file < env < flags and validates the
// result.
func resolveSettings(a *app, explicitConfig string, flagLayer config.Config) (*settings, error) {
	envLayer, err := config.FromEnv(a.getenv)
	if err != nil {
		return nil, fmt.Errorf("%w: environment: %v", errUsage, err)
	}

	if explicitConfig == "" {
		explicitConfig = a.getenv(config.ConfigEnv)
	}
	start := a.cwd
	switch {
	case flagLayer.Scan.Roots != nil && len(*flagLayer.Scan.Roots) > 0:
		start = (*flagLayer.Scan.Roots)[0]
	case envLayer.Scan.Roots != nil && len(*envLayer.Scan.Roots) > 0:
		start = (*envLayer.Scan.Roots)[0]
	}
	path, source, err := config.Find(start, explicitConfig, a.getenv("XDG_CONFIG_HOME"), a.home)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var fileLayer config.Config
	if path != "" {
		if fileLayer, err = config.Load(path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	scan, err := config.MergeScan(config.ScanSettingsFromConfig(engineopts.Defaults()), fileLayer.Scan, envLayer.Scan, flagLayer.Scan)
	if err != nil {
		return nil, &engine.ConfigurationError{Field: "markers", Err: err}
	}
	ui, err := config.NormalizeUI(config.MergeUI(config.DefaultUISettings(), fileLayer.UI, envLayer.UI, flagLayer.UI))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	log := logger.New(a.stderr, ui.LogLevel)
	if path != "" {
		log.Debugf("%s: using config %s (%s)", appName, path, source)
	}

	cfg := scan.EngineConfig()
	if err := engineopts.NormalizeAndValidate(&cfg); err != nil {
		return nil, err
	}
	return &settings{scan: cfg, ui: ui, log: log, configPath: path}, nil
}

func runScan(cmd *cobra.Command, a *app, f *scanFlags, args []string) error {
	flagLayer, err := f.layer(cmd, args)
	if err != nil {
		return err
	}
	s, err := resolveSettings(a, f.configPath, flagLayer)
	if err != nil {
		return err
	}
	sel, err := output.ResolveFields(s.ui.Fields)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	mode, err := termcolor.ParseMode(s.ui.Color)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var observer progress.Observer = progress.NoopObserver{}
	if progress.ShouldShowProgress(s.ui.Progress, f.noProgress) {
		observer = progress.NewAutoObserver(a.stderr, appName)
	}
	res, err := engine.Run(cmd.Context(), s.scan, engine.Options{
		FS:       a.fs,
		Logger:   s.log,
		Observer: observer,
		Home:     a.home,
		WorkDir:  a.cwd,
		LogTag:   appName,
	})
	if err != nil {
		return err
	}

	width := f.width
	if width == 0 && s.ui.Output == "table" {
		width = termcolor.Width(a.stdout)
	}
	err = output.Render(a.stdout, res, output.Options{
		Format:   s.ui.Output,
		Fields:   sel,
		ShowLine: s.ui.ShowLine,
		Group:    s.ui.Group,
		Width:    max(width, 0),
		Painter:  termcolor.NewPainter(mode, a.stdout, termcolor.EnvMap(a.environ())),
	})
	if err != nil {
		return err
	}
	if res.Canceled {
		return errCanceled
	}
	return nil
}
