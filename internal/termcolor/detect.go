package termcolor

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ColorMode is the user's --color choice.
type ColorMode int

const (
	ModeAuto ColorMode = iota
	ModeAlways
	ModeNever
)

var modeNames = map[ColorMode]string{ModeAuto: "auto", ModeAlways: "always", ModeNever: "never"}

func (m ColorMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "auto"
}

// ParseMode accepts auto, always and never in any case. Empty means auto.
func ParseMode(v string) (ColorMode, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ModeAuto, nil
	}
	for mode, name := range modeNames {
		if name == v {
			return mode, nil
		}
	}
	return ModeAuto, fmt.Errorf("unknown color mode: %s (want auto|always|never)", v)
}

// Profile is how many colours the terminal can show.
type Profile int

const (
	ProfileBasic8 Profile = iota
	ProfileANSI256
	ProfileTrueColor
)

// EnvMap turns os.Environ() style entries into a map.
func EnvMap(values []string) map[string]string {
	env := make(map[string]string, len(values))
	for _, entry := range values {
		if entry == "" {
			continue
		}
		key, value, _ := strings.Cut(entry, "=")
		env[key] = value
	}
	return env
}

// DetectMode resolves ModeAuto for out. The first matching rule wins:
// TERM=dumb, NO_COLOR and CLICOLOR=0 disable colours, a non-zero
// CLICOLOR_FORCE or FORCE_COLOR enables them, otherwise out must be a
// terminal. Buffers and HTTP responses are never terminals.
func DetectMode(out io.Writer, env map[string]string) ColorMode {
	if out == nil {
		return ModeNever
	}
	get := func(key string) string { return strings.TrimSpace(env[key]) }
	switch {
	case strings.EqualFold(get("TERM"), "dumb"), get("NO_COLOR") != "", get("CLICOLOR") == "0":
		return ModeNever
	case isForced(get("CLICOLOR_FORCE")), isForced(get("FORCE_COLOR")):
		return ModeAlways
	case isTerminal(out):
		return ModeAlways
	default:
		return ModeNever
	}
}

// Enabled reports whether output written to out should be coloured.
func Enabled(mode ColorMode, out io.Writer, env map[string]string) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	default:
		return DetectMode(out, env) == ModeAlways
	}
}

// DetectProfile picks truecolor for COLORTERM=truecolor/24bit, 256 colours
// for *256color TERMs, and the basic 8 otherwise.
func DetectProfile(env map[string]string) Profile {
	colorterm := strings.ToLower(env["COLORTERM"])
	for _, marker := range []string{"truecolor", "24bit", "24-bit"} {
		if strings.Contains(colorterm, marker) {
			return ProfileTrueColor
		}
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "256color") {
		return ProfileANSI256
	}
	return ProfileBasic8
}

func isForced(v string) bool {
	return v != "" && v != "0"
}

func terminalFd(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

func isTerminal(w io.Writer) bool {
	_, ok := terminalFd(w)
	return ok
}

// Width returns the column count of the terminal behind w, or 0 when w is
// not a terminal.
func Width(w io.Writer) int {
	fd, ok := terminalFd(w)
	if !ok {
		return 0
	}
	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 0 {
		return 0
	}
	return cols
}
