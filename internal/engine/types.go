package engine

import (
	"maps"
	"slices"
	"time"

	"github.com/phyten/todoreview/internal/fsys"
	"github.com/phyten/todoreview/internal/logger"
	"github.com/phyten/todoreview/internal/model"
	"github.com/phyten/todoreview/internal/pathfilter"
	"github.com/phyten/todoreview/internal/progress"
)

// Config はスキャン開始時に固定される設定のスナップショット。
// Start は受け取った値を複製するので、呼び出し側が後から変更しても影響しない。
type Config struct {
	Roots           []string          `json:"roots"`
	Markers         map[string]string `json:"markers"`
	PriorityPattern string            `json:"priority_pattern"`
	CaseSensitive   bool              `json:"case_sensitive"`
	Excludes        []string          `json:"exclude,omitempty"`
	Includes        []string          `json:"include,omitempty"`
	Preset          pathfilter.Preset `json:"preset"`
	MaxFileBytes    int64             `json:"max_file_bytes,omitempty"`
	// Languages restricts the scan to files detected as one of these
	// languages. Empty scans every file the path filter admits.
	Languages []string `json:"languages,omitempty"`
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := c
	out.Roots = slices.Clone(c.Roots)
	out.Excludes = slices.Clone(c.Excludes)
	out.Includes = slices.Clone(c.Includes)
	out.Markers = maps.Clone(c.Markers)
	out.Languages = slices.Clone(c.Languages)
	return out
}

// Options は設定以外の実行時の依存関係。ゼロ値でも動作する。
type Options struct {
	// FS defaults to the host filesystem.
	FS fsys.FS
	// Logger receives diagnostics such as unreadable files.
	Logger logger.Logger
	// Observer receives throttled progress snapshots.
	Observer progress.Observer
	// OnComplete is invoked exactly once with the final result.
	OnComplete func(*Result)
	// Deliver runs the completion callback on the caller's side, e.g. by
	// posting it to an event loop, and must eventually run it. The default
	// calls it directly on the scanning goroutine.
	Deliver func(func())
	// Home and WorkDir override "~" expansion and relative root resolution.
	Home    string
	WorkDir string
	// LogTag prefixes per-file diagnostics.
	LogTag string
	// FileGuard, when set, is asked about every file's canonical path before
	// it is read. Rejected files are skipped and not counted.
	FileGuard func(path string) bool
}

// Result はスキャン完了時に 1 度だけ渡される結果。
type Result struct {
	SessionID      string          `json:"session_id"`
	Roots          []string        `json:"roots"`
	ResolvedRoots  []string        `json:"resolved_roots,omitempty"`
	Records        []model.Record  `json:"records"`
	Total          int             `json:"total"`
	FilesProcessed int             `json:"files_processed"`
	Elapsed        time.Duration   `json:"-"`
	ElapsedMS      int64           `json:"elapsed_ms"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	Canceled       bool            `json:"canceled,omitempty"`
	MissingRoots   []string        `json:"missing_roots,omitempty"`
	Errors         []FileReadError `json:"errors,omitempty"`
	ErrorCount     int             `json:"error_count"`
	Tags           []string        `json:"tags"`
	Config         Config          `json:"-"`
}

// ElapsedSeconds is the wall-clock duration of the scan in seconds.
func (r *Result) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Lookup returns the record with the given ID. IDs are 1-based positions in
// the sorted result.
func (r *Result) Lookup(id int) (model.Record, bool) {
	if r == nil || id < 1 || id > len(r.Records) {
		return model.Record{}, false
	}
	rec := r.Records[id-1]
	return rec, rec.ID == id
}
