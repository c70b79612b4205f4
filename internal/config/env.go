package config

import (
	"errors"
	"math"
	"strings"

	engineopts "github.com/phyten/todoreview/internal/engine/opts"
)

// EnvPrefix starts every environment variable the CLI reads.
const EnvPrefix = "TODOREVIEW_"

// FromEnv reads the TODOREVIEW_* layer. List values are comma separated, so
// tags given here cannot carry regexes containing commas.
func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	var cfg Config
	var errs []error

	setString := func(target **string, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		value := raw
		*target = &value
	}
	setList := func(target **[]string, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		list := engineopts.SplitMulti([]string{raw})
		if len(list) == 0 {
			empty := make([]string, 0)
			*target = &empty
			return
		}
		copyVals := make([]string, len(list))
		copy(copyVals, list)
		*target = &copyVals
	}
	setBool := func(target **bool, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		v, err := engineopts.ParseBool(raw, key)
		if err != nil {
			errs = append(errs, err)
			return
		}
		value := v
		*target = &value
	}
	setInt := func(target **int, key string, min, max int) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		v, err := engineopts.ParseIntInRange(raw, key, min, max)
		if err != nil {
			errs = append(errs, err)
			return
		}
		value := v
		*target = &value
	}

	setList(&cfg.Scan.Roots, EnvPrefix+"ROOTS")
	setList(&cfg.Scan.Tags, EnvPrefix+"TAGS")
	setString(&cfg.Scan.PriorityPattern, EnvPrefix+"PRIORITY_PATTERN")
	setBool(&cfg.Scan.CaseSensitive, EnvPrefix+"CASE_SENSITIVE")
	if raw := strings.TrimSpace(getenv(EnvPrefix + "IGNORE_CASE")); raw != "" {
		v, err := engineopts.ParseBool(raw, EnvPrefix+"IGNORE_CASE")
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Scan.CaseSensitive = boolPtr(!v)
		}
	}
	setList(&cfg.Scan.Excludes, EnvPrefix+"EXCLUDE")
	setList(&cfg.Scan.Includes, EnvPrefix+"INCLUDE")
	setString(&cfg.Scan.Preset, EnvPrefix+"PRESET")
	// The upper bound is enforced by NormalizeAndValidate for every input.
	setInt(&cfg.Scan.MaxFileBytes, EnvPrefix+"MAX_FILE_BYTES", 0, math.MaxInt)
	setList(&cfg.Scan.Languages, EnvPrefix+"LANGS")

	setString(&cfg.UI.Output, EnvPrefix+"OUTPUT")
	setString(&cfg.UI.Color, EnvPrefix+"COLOR")
	setBool(&cfg.UI.Progress, EnvPrefix+"PROGRESS")
	setString(&cfg.UI.Fields, EnvPrefix+"FIELDS")
	setBool(&cfg.UI.ShowLine, EnvPrefix+"SHOW_LINE")
	setBool(&cfg.UI.Group, EnvPrefix+"GROUP")
	setString(&cfg.UI.LogLevel, EnvPrefix+"LOG_LEVEL")

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}
