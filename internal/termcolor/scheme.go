package termcolor

import (
	"strconv"
	"strings"
)

// Scheme is the terminal background the palette has to stay readable on.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeDark
	SchemeLight
)

// ThemeEnv overrides scheme detection with "light" or "dark".
const ThemeEnv = "TODOREVIEW_THEME"

// DetectScheme は背景色を推定する。ThemeEnv、COLORFGBG、TERM の順に見て、
// 決まらなければ dark とみなす。
func DetectScheme(env map[string]string) Scheme {
	switch strings.ToLower(strings.TrimSpace(env[ThemeEnv])) {
	case "light":
		return SchemeLight
	case "dark":
		return SchemeDark
	}
	if bg, ok := colorfgbgBackground(env["COLORFGBG"]); ok {
		// 0-6 and 8 are dark ANSI colours, 7 and 9-15 light ones.
		if bg == 7 || bg >= 9 {
			return SchemeLight
		}
		return SchemeDark
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "light") {
		return SchemeLight
	}
	return SchemeDark
}

// colorfgbgBackground reads the last numeric field of "fg;bg" or
// "fg;default;bg".
func colorfgbgBackground(raw string) (int, bool) {
	fields := strings.Split(strings.TrimSpace(raw), ";")
	for i := len(fields) - 1; i >= 0; i-- {
		if n, err := strconv.Atoi(strings.TrimSpace(fields[i])); err == nil && n >= 0 {
			return n, true
		}
		if strings.TrimSpace(fields[i]) != "" && fields[i] != "default" {
			return 0, false
		}
	}
	return 0, false
}
