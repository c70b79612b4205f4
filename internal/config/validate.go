package config

import (
	"fmt"
	"strings"

	engineopts "github.com/phyten/todoreview/internal/engine/opts"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// CanonicalizeColor accepts auto, always and never.
func CanonicalizeColor(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "", "auto":
		return "auto", nil
	case "always", "never":
		return mode, nil
	default:
		return "", fmt.Errorf("invalid color: %s (want auto, always or never)", raw)
	}
}

func CanonicalizeLogLevel(raw string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(raw))
	if level == "" {
		return "warn", nil
	}
	if level == "warning" {
		return "warn", nil
	}
	for _, l := range logLevels {
		if level == l {
			return level, nil
		}
	}
	return "", fmt.Errorf("invalid log_level: %s (want one of %s)", raw, strings.Join(logLevels, ", "))
}

func NormalizeUI(values UISettings) (UISettings, error) {
	var err error
	values.Fields = strings.TrimSpace(values.Fields)

	values.Output, err = engineopts.NormalizeOutput(values.Output)
	if err != nil {
		return values, err
	}
	values.Color, err = CanonicalizeColor(values.Color)
	if err != nil {
		return values, err
	}
	values.LogLevel, err = CanonicalizeLogLevel(values.LogLevel)
	if err != nil {
		return values, err
	}
	return values, nil
}
