package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Observer receives throttled snapshots while a scan runs and one final
// snapshot when it ends.
type Observer interface {
	Publish(Snapshot)
	Done(Snapshot)
}

type NoopObserver struct{}

func (NoopObserver) Publish(Snapshot) {}
func (NoopObserver) Done(Snapshot)    {}

// ObserverFunc adapts a function to Observer. Done is forwarded as a final
// Publish.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Publish(s Snapshot) { f(s) }
func (f ObserverFunc) Done(s Snapshot)    { f(s) }

type MultiObserver struct {
	observers []Observer
}

func NewMultiObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, ob := range obs {
		if ob == nil {
			continue
		}
		filtered = append(filtered, ob)
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &MultiObserver{observers: filtered}
}

func (m *MultiObserver) Publish(s Snapshot) {
	for _, ob := range m.observers {
		ob.Publish(s)
	}
}

func (m *MultiObserver) Done(s Snapshot) {
	for _, ob := range m.observers {
		ob.Done(s)
	}
}

// ShouldShowProgress は --progress / --no-progress と端末判定から表示要否を決める。
func ShouldShowProgress(force, no bool) bool {
	if no {
		return false
	}
	if force {
		return true
	}
	return isTTY(os.Stderr)
}

type ttyObserver struct {
	w     io.Writer
	label string
	mu    sync.Mutex
}

type lineObserver struct {
	w     io.Writer
	label string
	mu    sync.Mutex
}

// NewTTYObserver rewrites a single status line in place.
func NewTTYObserver(w io.Writer, label string) Observer {
	if w == nil {
		w = os.Stderr
	}
	return &ttyObserver{w: w, label: label}
}

// NewLineObserver prints one status line per snapshot, suitable for logs.
func NewLineObserver(w io.Writer, label string) Observer {
	if w == nil {
		w = os.Stderr
	}
	return &lineObserver{w: w, label: label}
}

// NewAutoObserver picks the TTY observer for terminals and the line observer
// otherwise.
func NewAutoObserver(w io.Writer, label string) Observer {
	if w == nil {
		w = os.Stderr
	}
	if f, ok := w.(*os.File); ok && isTTY(f) {
		return NewTTYObserver(w, label)
	}
	return NewLineObserver(w, label)
}

func (o *ttyObserver) Publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintf(o.w, "\r\033[K%s", StatusLine(o.label, s))
}

func (o *ttyObserver) Done(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintf(o.w, "\r\033[K%s\n", StatusLine(o.label, s))
}

func (o *lineObserver) Publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintln(o.w, StatusLine(o.label, s))
}

func (o *lineObserver) Done(s Snapshot) { o.Publish(s) }

// StatusLine renders "label: N files processed" followed by the rate once
// warm-up is over, and the elapsed time for the final snapshot.
func StatusLine(label string, s Snapshot) string {
	line := fmt.Sprintf("%s files processed", humanize.Comma(int64(s.Processed)))
	if label != "" {
		line = label + ": " + line
	}
	if s.Known() && !s.Final && s.Total > 0 {
		line += fmt.Sprintf(" (%d%%)", percent(s.Processed, s.Total))
	}
	if !s.Warmup && s.RateEMA > 0 {
		line += fmt.Sprintf(", %.1f/s", s.RateEMA)
	}
	if s.Final {
		line += ", done in " + formatElapsed(s.Elapsed)
	}
	return line
}

func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	total := int(math.Round(d.Seconds()))
	hours := total / 3600
	if hours > 99 {
		hours = 99
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, (total%3600)/60, total%60)
}

func percent(a, b int) int {
	if b <= 0 {
		if a <= 0 {
			return 0
		}
		return 100
	}
	if a <= 0 {
		return 0
	}
	p := int(float64(a) * 100 / float64(b))
	if p > 100 {
		return 100
	}
	return p
}

func isTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
