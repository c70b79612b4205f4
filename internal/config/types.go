package config

import (
	"maps"

	"github.com/phyten/todoreview/internal/engine"
	engineopts "github.com/phyten/todoreview/internal/engine/opts"
	"github.com/phyten/todoreview/internal/pathfilter"
)

// ScanConfig は 1 つの設定レイヤ (ファイル・環境変数・フラグ) のスキャン設定。
// nil のフィールドは「このレイヤでは未指定」を表す。
type ScanConfig struct {
	Roots           *[]string          `yaml:"roots" toml:"roots" json:"roots"`
	Markers         *map[string]string `yaml:"markers" toml:"markers" json:"markers"`
	Tags            *[]string          `yaml:"tags" toml:"tags" json:"tags"`
	PriorityPattern *string            `yaml:"priority_pattern" toml:"priority_pattern" json:"priority_pattern"`
	CaseSensitive   *bool              `yaml:"case_sensitive" toml:"case_sensitive" json:"case_sensitive"`
	Excludes        *[]string          `yaml:"exclude" toml:"exclude" json:"exclude"`
	Includes        *[]string          `yaml:"include" toml:"include" json:"include"`
	Preset          *string            `yaml:"preset" toml:"preset" json:"preset"`
	MaxFileBytes    *int               `yaml:"max_file_bytes" toml:"max_file_bytes" json:"max_file_bytes"`
	Languages       *[]string          `yaml:"languages" toml:"languages" json:"languages"`
}

type UIConfig struct {
	Output   *string `yaml:"output" toml:"output" json:"output"`
	Color    *string `yaml:"color" toml:"color" json:"color"`
	Progress *bool   `yaml:"progress" toml:"progress" json:"progress"`
	Fields   *string `yaml:"fields" toml:"fields" json:"fields"`
	ShowLine *bool   `yaml:"show_line" toml:"show_line" json:"show_line"`
	Group    *bool   `yaml:"group" toml:"group" json:"group"`
	LogLevel *string `yaml:"log_level" toml:"log_level" json:"log_level"`
}

type Config struct {
	Scan ScanConfig `yaml:"scan" toml:"scan" json:"scan"`
	UI   UIConfig   `yaml:"ui" toml:"ui" json:"ui"`
}

// ScanSettings はすべてのレイヤを重ねた後のスキャン設定。
type ScanSettings struct {
	Roots           []string
	Markers         map[string]string
	PriorityPattern string
	CaseSensitive   bool
	Excludes        []string
	Includes        []string
	Preset          string
	MaxFileBytes    int
	Languages       []string
}

type UISettings struct {
	Output   string
	Color    string
	Progress bool
	Fields   string
	ShowLine bool
	Group    bool
	LogLevel string
}

// ScanSettingsFromConfig seeds the merge with an engine configuration,
// usually engineopts.Defaults().
func ScanSettingsFromConfig(c engine.Config) ScanSettings {
	return ScanSettings{
		Roots:           cloneStrings(c.Roots),
		Markers:         maps.Clone(c.Markers),
		PriorityPattern: c.PriorityPattern,
		CaseSensitive:   c.CaseSensitive,
		Excludes:        cloneStrings(c.Excludes),
		Includes:        cloneStrings(c.Includes),
		Preset:          string(c.Preset),
		MaxFileBytes:    int(c.MaxFileBytes),
		Languages:       cloneStrings(c.Languages),
	}
}

// EngineConfig converts the merged settings into the scan snapshot.
func (s ScanSettings) EngineConfig() engine.Config {
	return engine.Config{
		Roots:           cloneStrings(s.Roots),
		Markers:         maps.Clone(s.Markers),
		PriorityPattern: s.PriorityPattern,
		CaseSensitive:   s.CaseSensitive,
		Excludes:        cloneStrings(s.Excludes),
		Includes:        cloneStrings(s.Includes),
		Preset:          pathfilter.Preset(s.Preset),
		MaxFileBytes:    int64(s.MaxFileBytes),
		Languages:       cloneStrings(s.Languages),
	}
}

// Tags lists the configured marker names in sorted order.
func (s ScanSettings) Tags() []string {
	return engineopts.TagsOf(s.Markers)
}

func DefaultUISettings() UISettings {
	return UISettings{
		Output:   "table",
		Color:    "auto",
		Progress: false,
		Fields:   "",
		ShowLine: true,
		Group:    false,
		LogLevel: "warn",
	}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
