// Package engine runs a scan: it walks the configured roots, reads each
// eligible file, and delivers the priority-ordered records once.
package engine

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/phyten/todoreview/internal/detect"
	"github.com/phyten/todoreview/internal/fsys"
	"github.com/phyten/todoreview/internal/logger"
	"github.com/phyten/todoreview/internal/model"
	"github.com/phyten/todoreview/internal/pathfilter"
	"github.com/phyten/todoreview/internal/pattern"
	"github.com/phyten/todoreview/internal/walker"
)

// Plan is a validated, compiled Config.
type Plan struct {
	Config   Config
	Patterns *pattern.Set
	Filter   *pathfilter.Filter
}

// Prepare validates cfg and compiles its patterns. Every failure is a
// *ConfigurationError.
func Prepare(cfg Config) (*Plan, error) {
	cfg = cfg.Clone()
	if len(cfg.Roots) == 0 {
		return nil, &ConfigurationError{Field: "roots", Err: errors.New("at least one root is required")}
	}
	for _, root := range cfg.Roots {
		if strings.TrimSpace(root) == "" {
			return nil, &ConfigurationError{Field: "roots", Err: errors.New("empty root path")}
		}
	}
	if cfg.MaxFileBytes < 0 {
		return nil, &ConfigurationError{Field: "max_file_bytes", Err: errors.New("must be >= 0")}
	}
	preset, err := pathfilter.ParsePreset(string(cfg.Preset))
	if err != nil {
		return nil, &ConfigurationError{Field: "preset", Err: err}
	}
	cfg.Preset = preset
	if cfg.Languages, err = detect.Canonical(cfg.Languages); err != nil {
		return nil, &ConfigurationError{Field: "languages", Err: err}
	}

	patterns, err := pattern.Compile(cfg.Markers, cfg.PriorityPattern, cfg.CaseSensitive)
	if err != nil {
		field := "markers"
		var pe *pattern.Error
		if errors.As(err, &pe) && pe.Tag == "" {
			field = "priority_pattern"
		}
		return nil, &ConfigurationError{Field: field, Err: err}
	}
	filter, err := pathfilter.New(preset, cfg.Excludes, cfg.Includes)
	if err != nil {
		return nil, &ConfigurationError{Field: "exclude/include", Err: err}
	}
	return &Plan{Config: cfg, Patterns: patterns, Filter: filter}, nil
}

// Handle はバックグラウンドで実行中のスキャンへの参照。
type Handle struct {
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
	state   atomic.Int32
	result  *Result
}

// Start validates cfg and launches the scan on its own goroutine. It never
// blocks on the scan itself. A configuration error is returned before any
// work starts and OnComplete is then never called.
//
// OnComplete runs exactly once, also when the scan is cancelled; it must not
// call Wait on the same handle.
func Start(ctx context.Context, cfg Config, opts Options) (*Handle, error) {
	plan, err := Prepare(cfg)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		session: newSession(opts.Observer),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	h.state.Store(int32(StateRunning))
	go h.run(ctx, plan, opts)
	return h, nil
}

// Run starts a scan and waits for its result.
func Run(ctx context.Context, cfg Config, opts Options) (*Result, error) {
	h, err := Start(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	return h.Wait(), nil
}

// ID returns the session identifier used in log lines.
func (h *Handle) ID() string { return h.session.ID }

// Done is closed once the result is available and OnComplete has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the scan finishes and returns its result.
func (h *Handle) Wait() *Result {
	<-h.done
	return h.result
}

// Cancel stops the scan between files. The partial result is still delivered.
func (h *Handle) Cancel() { h.cancel() }

// Processed is a best-effort count of files attempted so far.
func (h *Handle) Processed() int { return h.session.Processed() }

// State reports the current lifecycle state.
func (h *Handle) State() State { return State(h.state.Load()) }

func (h *Handle) run(ctx context.Context, plan *Plan, opts Options) {
	defer h.cancel()

	fs := opts.FS
	if fs == nil {
		fs = fsys.OS()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	tag := opts.LogTag
	if tag == "" {
		tag = DefaultLogTag
	}
	cfg := plan.Config
	log.Debugf("%s: session %s started, roots=%v preset=%s tags=%v", tag, h.session.ID, cfg.Roots, cfg.Preset, plan.Patterns.Tags())

	var missing []string
	wopts := []walker.Option{
		walker.WithLogger(log),
		walker.OnMissingRoot(func(root string, err error) {
			warn := &PathNotFoundWarning{Root: root, Err: err}
			if !fsys.IsNotExist(err) {
				log.Warnf("%s: can't resolve root '%s', error: %v", tag, root, err)
			} else {
				log.Warnf("%s: %v, skipping", tag, warn)
			}
			missing = append(missing, root)
		}),
	}
	if opts.Home != "" {
		wopts = append(wopts, walker.WithHome(opts.Home))
	}
	if opts.WorkDir != "" {
		wopts = append(wopts, walker.WithWorkDir(opts.WorkDir))
	}
	if opts.FileGuard != nil {
		wopts = append(wopts, walker.WithFileGuard(opts.FileGuard))
	}
	w := walker.New(fs, plan.Filter, wopts...)
	var resolved []string
	for _, root := range cfg.Roots {
		if canonical, err := w.Canonical(root); err == nil {
			resolved = append(resolved, canonical)
		}
	}
	scanner := NewScanner(fs, plan.Patterns, log, tag, cfg.MaxFileBytes).WithLanguages(cfg.Languages)

	tally := scanner.Scan(ctx, w.Walk(ctx, cfg.Roots), h.session.visit)
	canceled := ctx.Err() != nil
	finished := time.Now()
	h.session.finish()

	records := sortRecords(tally.Records)
	elapsed := finished.Sub(h.session.StartedAt)
	res := &Result{
		SessionID:      h.session.ID,
		Roots:          cfg.Roots,
		ResolvedRoots:  resolved,
		Records:        records,
		Total:          len(records),
		FilesProcessed: h.session.Processed(),
		Elapsed:        elapsed,
		ElapsedMS:      elapsed.Milliseconds(),
		StartedAt:      h.session.StartedAt,
		FinishedAt:     finished,
		Canceled:       canceled,
		MissingRoots:   missing,
		Errors:         tally.Errors,
		ErrorCount:     len(tally.Errors),
		Tags:           plan.Patterns.Tags(),
		Config:         cfg,
	}
	log.Infof("%s: session %s finished: %s records in %s files (%.2fs, %d unreadable)", tag, res.SessionID,
		humanize.Comma(int64(res.Total)), humanize.Comma(int64(res.FilesProcessed)), res.ElapsedSeconds(), res.ErrorCount)
	if canceled {
		log.Warnf("%s: session %s canceled after %d files", tag, res.SessionID, res.FilesProcessed)
	}

	h.result = res
	h.state.Store(int32(StateCompleted))
	if opts.OnComplete != nil {
		deliver := opts.Deliver
		if deliver == nil {
			deliver = func(fn func()) { fn() }
		}
		delivered := make(chan struct{})
		deliver(func() {
			defer close(delivered)
			opts.OnComplete(res)
		})
		<-delivered
	}
	close(h.done)
}

// sortRecords orders by priority, then tag, keeping discovery order for
// ties, and numbers the records from 1.
func sortRecords(records []model.Record) []model.Record {
	slices.SortStableFunc(records, func(a, b model.Record) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	for i := range records {
		records[i].ID = i + 1
	}
	return records
}
