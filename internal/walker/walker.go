// Package walker enumerates candidate files under a set of roots.
//
// Roots are canonicalized (home expansion, absolute path, symlinks resolved)
// before traversal. Directories are visited depth-first with entries sorted by
// name so a fixed tree always yields the same sequence. Excluded directories
// are pruned before they are read. Symlinks that point at directories are
// never followed; symlinks to files are yielded under their target's path.
package walker

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"sort"

	"github.com/phyten/todoreview/internal/fsys"
	"github.com/phyten/todoreview/internal/logger"
	"github.com/phyten/todoreview/internal/pathfilter"
)

const logTag = "todoreview.walker"

// MissingRootFunc is told about roots that cannot be resolved. When set, it
// replaces the walker's own warning.
type MissingRootFunc func(root string, err error)

// Walker is reusable; each call to Walk starts a fresh traversal.
type Walker struct {
	fs        fsys.FS
	filter    *pathfilter.Filter
	log       logger.Logger
	home      string
	cwd       string
	onMissing MissingRootFunc
	guard     func(string) bool
}

// Option customizes a Walker.
type Option func(*Walker)

// WithHome sets the directory "~" expands to.
func WithHome(home string) Option { return func(w *Walker) { w.home = home } }

// WithWorkDir sets the directory relative roots are resolved against.
func WithWorkDir(cwd string) Option { return func(w *Walker) { w.cwd = cwd } }

// WithLogger sets the diagnostics logger.
func WithLogger(l logger.Logger) Option { return func(w *Walker) { w.log = l } }

// OnMissingRoot registers a callback for roots that do not exist.
func OnMissingRoot(fn MissingRootFunc) Option { return func(w *Walker) { w.onMissing = fn } }

// WithFileGuard drops every file whose canonical path fn rejects.
func WithFileGuard(fn func(canonical string) bool) Option {
	return func(w *Walker) { w.guard = fn }
}

// New returns a Walker over fs. A nil filter allows everything.
func New(fs fsys.FS, filter *pathfilter.Filter, opts ...Option) *Walker {
	w := &Walker{fs: fs, filter: filter, log: logger.Nop()}
	if w.filter == nil {
		w.filter, _ = pathfilter.New(pathfilter.PresetNone, nil, nil)
	}
	if home, err := os.UserHomeDir(); err == nil {
		w.home = home
	}
	if cwd, err := os.Getwd(); err == nil {
		w.cwd = cwd
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logger.Nop()
	}
	return w
}

// Canonical resolves root to an absolute path with every symlink evaluated.
func (w *Walker) Canonical(root string) (string, error) {
	p := fsys.Abs(fsys.ExpandHome(root, w.home), w.cwd)
	return fsys.Realpath(w.fs, p)
}

// Walk returns the files under roots in deterministic order. Iteration stops
// early when ctx is cancelled or the consumer stops ranging.
func (w *Walker) Walk(ctx context.Context, roots []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		t := &traversal{w: w, ctx: ctx, yield: yield, seen: make(map[string]struct{})}
		for _, root := range roots {
			if ctx.Err() != nil {
				return
			}
			if !t.root(root) {
				return
			}
		}
	}
}

type traversal struct {
	w     *Walker
	ctx   context.Context
	yield func(string) bool
	seen  map[string]struct{}
}

func (t *traversal) root(root string) bool {
	w := t.w
	canonical, err := w.Canonical(root)
	if err != nil {
		switch {
		case w.onMissing != nil:
			w.onMissing(root, err)
		case fsys.IsNotExist(err):
			w.log.Warnf("%s: root '%s' does not exist, skipping", logTag, root)
		default:
			w.log.Warnf("%s: can't resolve root '%s', error: %v", logTag, root, err)
		}
		return true
	}
	info, err := w.fs.Stat(canonical)
	if err != nil {
		w.log.Warnf("%s: can't stat root '%s', error: %v", logTag, canonical, err)
		return true
	}
	if !info.IsDir() {
		if !w.filter.AllowFile(filepath.Base(canonical)) {
			w.log.Debugf("%s: root file '%s' is excluded", logTag, canonical)
			return true
		}
		return t.emit(canonical)
	}
	return t.dir(canonical)
}

func (t *traversal) dir(dir string) bool {
	w := t.w
	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		w.log.Warnf("%s: can't read directory '%s', error: %v", logTag, dir, err)
		return true
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if t.ctx.Err() != nil {
			return false
		}
		name := entry.Name()
		full := filepath.Join(dir, name)
		mode := entry.Mode()

		if mode&os.ModeSymlink != 0 {
			target, err := w.fs.Stat(full)
			if err != nil {
				w.log.Debugf("%s: dangling symlink '%s': %v", logTag, full, err)
				continue
			}
			if target.IsDir() {
				w.log.Debugf("%s: not following directory symlink '%s'", logTag, full)
				continue
			}
			mode = target.Mode()
			if mode.IsRegular() {
				real, err := fsys.Realpath(w.fs, full)
				if err != nil {
					w.log.Debugf("%s: can't resolve symlink '%s': %v", logTag, full, err)
					continue
				}
				full = real
			}
		}

		switch {
		case mode.IsDir():
			if !w.filter.AllowDir(name) {
				w.log.Debugf("%s: pruned '%s'", logTag, full)
				continue
			}
			if !t.dir(full) {
				return false
			}
		case mode.IsRegular():
			if !w.filter.AllowFile(name) {
				continue
			}
			if !t.emit(full) {
				return false
			}
		}
	}
	return true
}

// emit yields a canonical file path once per walk.
func (t *traversal) emit(path string) bool {
	if _, dup := t.seen[path]; dup {
		return true
	}
	t.seen[path] = struct{}{}
	if t.w.guard != nil && !t.w.guard(path) {
		t.w.log.Warnf("%s: '%s' is outside the allowed roots, skipping", logTag, path)
		return true
	}
	return t.yield(path)
}
