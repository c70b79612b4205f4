package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	engineopts "github.com/phyten/todoreview/internal/engine/opts"
)

var decoders = map[string]func([]byte, any) error{
	".yaml": yaml.Unmarshal,
	".yml":  yaml.Unmarshal,
	".toml": toml.Unmarshal,
	".json": json.Unmarshal,
}

// Key aliases accepted in config files. Older plugin settings
// (ignored_dir_patterns, only_care_file_patterns, ...) map onto the
// current names.
var (
	scanAliases = map[string]string{
		"root": "roots", "path": "roots", "paths": "roots",
		"patterns": "markers", "todo_patterns": "markers",
		"priority":       "priority_pattern",
		"is_ignore_case": "ignore_case",
		"excludes":       "exclude", "ignored_dir_patterns": "exclude",
		"includes": "include", "only_care_file_patterns": "include",
		"max_bytes": "max_file_bytes",
		"langs":     "languages", "lang": "languages",
	}
	scanKeys = []string{
		"roots", "markers", "tags", "priority_pattern", "case_sensitive", "ignore_case",
		"exclude", "include", "preset", "max_file_bytes", "languages",
	}
	uiAliases = map[string]string{
		"format":           "output",
		"show_line_number": "show_line",
	}
	uiKeys = []string{"output", "color", "progress", "fields", "show_line", "group", "log_level"}
)

// Load は設定ファイルを 1 つ読み、レイヤとして返す。形式は拡張子で決まる。
func Load(path string) (Config, error) {
	var cfg Config
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return cfg, fmt.Errorf("unsupported config extension: %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var raw map[string]any
	if err := decode(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg, err = decodeConfigMap(raw); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func canonicalKey(key string, aliases map[string]string, keys []string) (string, bool) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	if canonical, ok := aliases[norm]; ok {
		return canonical, true
	}
	return norm, slices.Contains(keys, norm)
}

// decodeConfigMap splits a parsed document into its scan and ui sections.
// Keys outside both sections are accepted as shorthand for either.
func decodeConfigMap(raw map[string]any) (Config, error) {
	var cfg Config
	scan := map[string]any{}
	ui := map[string]any{}

	for key, value := range raw {
		switch section, _ := canonicalKey(key, nil, nil); section {
		case "scan", "ui":
			sub, err := toStringKeyMap(value)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", section, err)
			}
			dst, aliases, keys := scan, scanAliases, scanKeys
			if section == "ui" {
				dst, aliases, keys = ui, uiAliases, uiKeys
			}
			for k, v := range sub {
				canonical, ok := canonicalKey(k, aliases, keys)
				if !ok {
					return cfg, fmt.Errorf("unknown %s key: %s", section, k)
				}
				dst[canonical] = v
			}
		default:
			if canonical, ok := canonicalKey(key, scanAliases, scanKeys); ok {
				scan[canonical] = value
			} else if canonical, ok := canonicalKey(key, uiAliases, uiKeys); ok {
				ui[canonical] = value
			} else {
				return cfg, fmt.Errorf("unknown config key: %s", key)
			}
		}
	}

	if err := assignScan(scan, &cfg.Scan); err != nil {
		return cfg, fmt.Errorf("scan: %w", err)
	}
	if err := assignUI(ui, &cfg.UI); err != nil {
		return cfg, fmt.Errorf("ui: %w", err)
	}
	return cfg, nil
}

type setter func(value any, key string) error

func assignScan(section map[string]any, dst *ScanConfig) error {
	_, ignore := section["ignore_case"]
	if _, sensitive := section["case_sensitive"]; ignore && sensitive {
		return fmt.Errorf("case_sensitive and ignore_case are mutually exclusive")
	}
	return apply(section, map[string]setter{
		"roots":            listInto(&dst.Roots),
		"tags":             listInto(&dst.Tags),
		"exclude":          listInto(&dst.Excludes),
		"include":          listInto(&dst.Includes),
		"languages":        listInto(&dst.Languages),
		"priority_pattern": stringInto(&dst.PriorityPattern, false),
		"preset":           stringInto(&dst.Preset, true),
		"case_sensitive":   boolInto(&dst.CaseSensitive),
		"max_file_bytes":   intInto(&dst.MaxFileBytes),
		"markers": func(v any, key string) error {
			markers, err := expectMarkers(v, key)
			if err != nil {
				return err
			}
			dst.Markers = &markers
			return nil
		},
		"ignore_case": func(v any, key string) error {
			b, err := expectBool(v, key)
			if err != nil {
				return err
			}
			dst.CaseSensitive = boolPtr(!b)
			return nil
		},
	})
}

func assignUI(section map[string]any, dst *UIConfig) error {
	return apply(section, map[string]setter{
		"output":    stringInto(&dst.Output, true),
		"color":     stringInto(&dst.Color, true),
		"fields":    stringInto(&dst.Fields, true),
		"log_level": stringInto(&dst.LogLevel, true),
		"progress":  boolInto(&dst.Progress),
		"show_line": boolInto(&dst.ShowLine),
		"group":     boolInto(&dst.Group),
	})
}

func apply(section map[string]any, setters map[string]setter) error {
	keys := make([]string, 0, len(section))
	for key := range section {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		set, ok := setters[key]
		if !ok {
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := set(section[key], key); err != nil {
			return err
		}
	}
	return nil
}

func listInto(dst **[]string) setter {
	return func(v any, key string) error {
		list, err := expectStringList(v, key)
		if err != nil {
			return err
		}
		*dst = &list
		return nil
	}
}

func stringInto(dst **string, trim bool) setter {
	return func(v any, key string) error {
		s, err := expectString(v, key)
		if err != nil {
			return err
		}
		if trim {
			s = strings.TrimSpace(s)
		}
		*dst = &s
		return nil
	}
}

func boolInto(dst **bool) setter {
	return func(v any, key string) error {
		b, err := expectBool(v, key)
		if err != nil {
			return err
		}
		*dst = &b
		return nil
	}
}

func intInto(dst **int) setter {
	return func(v any, key string) error {
		n, err := expectInt(v, key)
		if err != nil {
			return err
		}
		*dst = &n
		return nil
	}
}

// expectMarkers accepts a tag → regex table, or a list of "NAME" /
// "NAME=regex" entries.
func expectMarkers(value any, field string) (map[string]string, error) {
	switch value.(type) {
	case []any, []string, string:
		list, err := expectStringList(value, field)
		if err != nil {
			return nil, err
		}
		return engineopts.MarkersFromTags(list)
	}
	table, err := toStringKeyMap(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	out := make(map[string]string, len(table))
	for tag, raw := range table {
		fragment, err := expectString(raw, field+"."+tag)
		if err != nil {
			return nil, err
		}
		out[strings.TrimSpace(tag)] = fragment
	}
	return out, nil
}

func expectString(value any, field string) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s: want a string, got %T", field, value)
	}
	return s, nil
}

func expectBool(value any, field string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return engineopts.ParseBool(v, field)
	}
	return false, fmt.Errorf("%s: want a boolean, got %T", field, value)
}

// expectInt accepts the integer shapes the three decoders produce: int
// (yaml), int64 (toml) and float64 (json), plus numeric strings.
func expectInt(value any, field string) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%s: want an integer, got %v", field, value)
}

// expectStringList accepts a list or a comma separated string. Blank
// entries are dropped.
func expectStringList(value any, field string) ([]string, error) {
	var items []string
	switch v := value.(type) {
	case string:
		items = engineopts.SplitMulti([]string{v})
	case []string:
		items = v
	case []any:
		for _, item := range v {
			s, err := expectString(item, field)
			if err != nil {
				return nil, err
			}
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("%s: want a string or a list, got %T", field, value)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

func toStringKeyMap(v any) (map[string]any, error) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, value := range typed {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key: %v", k)
			}
			out[key] = value
		}
		return out, nil
	}
	return nil, fmt.Errorf("want a table, got %T", v)
}
