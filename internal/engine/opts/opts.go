package opts

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/phyten/todoreview/internal/detect"
	"github.com/phyten/todoreview/internal/engine"
	"github.com/phyten/todoreview/internal/pathfilter"
	"github.com/phyten/todoreview/internal/pattern"
)

// MaxFileBytesLimit caps max_file_bytes so a typo cannot disable the guard.
const MaxFileBytesLimit = 1 << 30

var (
	trueLiterals  = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}}
	falseLiterals = map[string]struct{}{"0": {}, "false": {}, "no": {}, "off": {}}
)

// DefaultTags are scanned when nothing else is configured.
var DefaultTags = []string{"TODO", "FIXME"}

// Defaults returns the shared baseline configuration for both CLI and Web inputs.
func Defaults() engine.Config {
	markers, _ := MarkersFromTags(DefaultTags)
	return engine.Config{
		Markers:         markers,
		PriorityPattern: pattern.DefaultPriorityPattern,
		CaseSensitive:   false,
		Preset:          pathfilter.PresetDefault,
	}
}

// MarkersFromTags turns "NAME" or "NAME=regex" entries into a marker map. A
// bare name gets pattern.DefaultFragment. Later entries win.
func MarkersFromTags(tags []string) (map[string]string, error) {
	out := make(map[string]string, len(tags))
	for _, raw := range tags {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		name, fragment, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid tag %q: missing name", raw)
		}
		if !ok {
			fragment = pattern.DefaultFragment(name)
		}
		out[name] = strings.TrimSpace(fragment)
	}
	return out, nil
}

// TagsOf lists the marker names in sorted order.
func TagsOf(markers map[string]string) []string {
	out := make([]string, 0, len(markers))
	for tag := range markers {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// ApplyWebQuery copies recognised values from the query string into def.
// Validation happens separately via NormalizeAndValidate.
func ApplyWebQuery(def engine.Config, q url.Values) (engine.Config, error) {
	out := def.Clone()

	if raw := append(append([]string(nil), q["root"]...), q["path"]...); len(raw) > 0 {
		out.Roots = SplitMulti(raw)
	}
	if raw := q["exclude"]; len(raw) > 0 {
		out.Excludes = SplitMulti(raw)
	}
	if raw := q["include"]; len(raw) > 0 {
		out.Includes = SplitMulti(raw)
	}
	if raw := append(append([]string(nil), q["lang"]...), q["languages"]...); len(raw) > 0 {
		out.Languages = SplitMulti(raw)
	}
	if raw := q["tag"]; len(raw) > 0 {
		markers, err := MarkersFromTags(SplitMulti(raw))
		if err != nil {
			return out, err
		}
		out.Markers = markers
	}
	// marker=NAME=regex is taken verbatim since regexes may contain commas.
	if raw := nonEmpty(q["marker"]); len(raw) > 0 {
		markers, err := MarkersFromTags(raw)
		if err != nil {
			return out, err
		}
		if q["tag"] == nil {
			out.Markers = map[string]string{}
		}
		for tag, fragment := range markers {
			out.Markers[tag] = fragment
		}
	}
	if raw, ok := lastRawValue(q["priority_pattern"]); ok {
		out.PriorityPattern = raw
	}
	if raw, ok := lastLiteralValue(q["case_sensitive"]); ok {
		v, err := ParseBool(raw, "case_sensitive")
		if err != nil {
			return out, err
		}
		out.CaseSensitive = v
	}
	if raw, ok := lastLiteralValue(q["preset"]); ok {
		out.Preset = pathfilter.Preset(raw)
	}
	if raw, ok := lastLiteralValue(q["max_file_bytes"]); ok {
		n, err := ParseIntInRange(raw, "max_file_bytes", 0, MaxFileBytesLimit)
		if err != nil {
			return out, err
		}
		out.MaxFileBytes = int64(n)
	}
	return out, nil
}

// NormalizeAndValidate trims list values, fills defaults, and compiles the
// configuration once so errors surface before a scan is started.
func NormalizeAndValidate(c *engine.Config) error {
	c.Roots = trimSlice(c.Roots)
	if len(c.Roots) == 0 {
		c.Roots = []string{"."}
	}
	c.Excludes = trimSlice(c.Excludes)
	c.Includes = trimSlice(c.Includes)

	preset, err := pathfilter.ParsePreset(string(c.Preset))
	if err != nil {
		return &engine.ConfigurationError{Field: "preset", Err: err}
	}
	c.Preset = preset

	if c.MaxFileBytes < 0 || c.MaxFileBytes > MaxFileBytesLimit {
		return &engine.ConfigurationError{
			Field: "max_file_bytes",
			Err:   fmt.Errorf("must be between 0 and %d", MaxFileBytesLimit),
		}
	}
	if c.Markers == nil {
		c.Markers, _ = MarkersFromTags(DefaultTags)
	}
	if c.Languages, err = detect.Canonical(c.Languages); err != nil {
		return &engine.ConfigurationError{Field: "languages", Err: err}
	}
	_, err = engine.Prepare(*c)
	return err
}

// ParseBool converts a string literal into a boolean, accepting multiple synonyms.
func ParseBool(raw, key string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := trueLiterals[v]; ok {
		return true, nil
	}
	if _, ok := falseLiterals[v]; ok {
		return false, nil
	}
	return false, fmt.Errorf("invalid value for %s: %q", key, raw)
}

// ParseIntInRange parses a string into an int and ensures it falls within [min, max].
// If max < min, the upper bound is ignored.
func ParseIntInRange(raw, key string, min, max int) (int, error) {
	n, err := parseInt(raw, key)
	if err != nil {
		return 0, err
	}
	if n < min {
		if max >= min {
			return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
		}
		return 0, fmt.Errorf("%s must be >= %d", key, min)
	}
	if max >= min && n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}
	return n, nil
}

// Outputs lists the accepted --output values.
var Outputs = []string{"table", "tsv", "json", "ndjson", "csv", "markdown"}

// NormalizeOutput validates and lower-cases the CLI/Web output format value.
func NormalizeOutput(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "":
		return "table", nil
	case "md":
		return "markdown", nil
	}
	for _, o := range Outputs {
		if v == o {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid --output: %s (want one of %s)", value, strings.Join(Outputs, ", "))
}

// SplitMulti turns repeated query parameters (and comma-separated values) into a flat slice.
func SplitMulti(vals []string) []string {
	var out []string
	for _, raw := range vals {
		for _, piece := range strings.Split(raw, ",") {
			part := strings.TrimSpace(piece)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

func parseInt(raw, key string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	return n, nil
}

func lastLiteralValue(vals []string) (string, bool) {
	flat := SplitMulti(vals)
	if len(flat) == 0 {
		return "", false
	}
	return flat[len(flat)-1], true
}

func lastRawValue(vals []string) (string, bool) {
	for i := len(vals) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(vals[i])
		if trimmed == "" {
			continue
		}
		return trimmed, true
	}
	return "", false
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func trimSlice(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
