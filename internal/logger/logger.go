// Package logger provides the leveled console logger used for scan
// diagnostics (unreadable files, missing roots, session summaries).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[string]int{
	"trace": levelTrace,
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

// Logger is the logging surface the scanner depends on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ConsoleLogger writes "[HH:MM:SS] [LEVEL] message" lines. Safe for
// concurrent use.
type ConsoleLogger struct {
	mu     sync.Mutex
	w      io.Writer
	level  int
	color  bool
	now    func() time.Time
	prefix string
}

// New creates a ConsoleLogger. Unknown levels fall back to "info"; a nil
// writer discards everything. Colour is enabled only for terminals.
func New(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		w:     w,
		level: ParseLevel(level),
		color: isTerminal(w),
		now:   time.Now,
	}
}

// ParseLevel maps a level name to its threshold, defaulting to info.
func ParseLevel(level string) int {
	if n, ok := levelNames[strings.ToLower(strings.TrimSpace(level))]; ok {
		return n
	}
	return levelInfo
}

// WithPrefix returns a logger sharing the writer that prefixes each message,
// e.g. with a session ID.
func (l *ConsoleLogger) WithPrefix(prefix string) *ConsoleLogger {
	return &ConsoleLogger{w: l.w, level: l.level, color: l.color, now: l.now, prefix: prefix}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (l *ConsoleLogger) Tracef(format string, args ...any) { l.logf(levelTrace, "TRACE", format, args...) }
func (l *ConsoleLogger) Debugf(format string, args ...any) { l.logf(levelDebug, "DEBUG", format, args...) }
func (l *ConsoleLogger) Infof(format string, args ...any)  { l.logf(levelInfo, "INFO", format, args...) }
func (l *ConsoleLogger) Warnf(format string, args ...any)  { l.logf(levelWarn, "WARN", format, args...) }
func (l *ConsoleLogger) Errorf(format string, args ...any) { l.logf(levelError, "ERROR", format, args...) }

func (l *ConsoleLogger) logf(level int, name, format string, args ...any) {
	if l == nil || l.w == nil || level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = l.prefix + " " + msg
	}
	tag := name
	if l.color {
		tag = colorize(name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.w, "[%s] [%s] %s\n", l.now().Format("15:04:05"), tag, msg)
}

func colorize(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

type nop struct{}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }
