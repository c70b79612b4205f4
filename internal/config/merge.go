package config

import (
	"fmt"
	"maps"
	"strings"

	engineopts "github.com/phyten/todoreview/internal/engine/opts"
)

func boolPtr(v bool) *bool {
	b := v
	return &b
}

// MergeScan は後ろのレイヤほど優先して設定を重ねる。
// 同じレイヤに tags と markers がある場合、tags で置き換えた後に markers を上書きする。
func MergeScan(base ScanSettings, layers ...ScanConfig) (ScanSettings, error) {
	out := base
	out.Markers = maps.Clone(base.Markers)
	for _, layer := range layers {
		out.Roots = ResolveStrings(out.Roots, layer.Roots)
		out.PriorityPattern = Resolve(out.PriorityPattern, layer.PriorityPattern)
		out.CaseSensitive = Resolve(out.CaseSensitive, layer.CaseSensitive)
		out.Excludes = ResolveStrings(out.Excludes, layer.Excludes)
		out.Includes = ResolveStrings(out.Includes, layer.Includes)
		out.Preset = ResolveAndTrim(out.Preset, layer.Preset)
		out.MaxFileBytes = Resolve(out.MaxFileBytes, layer.MaxFileBytes)
		out.Languages = ResolveStrings(out.Languages, layer.Languages)

		if layer.Tags != nil {
			markers, err := engineopts.MarkersFromTags(*layer.Tags)
			if err != nil {
				return out, fmt.Errorf("tags: %w", err)
			}
			out.Markers = markers
		}
		if layer.Markers != nil {
			if layer.Tags == nil || out.Markers == nil {
				out.Markers = map[string]string{}
			}
			for tag, fragment := range *layer.Markers {
				out.Markers[strings.TrimSpace(tag)] = fragment
			}
		}
	}
	return out, nil
}

func MergeUI(base UISettings, layers ...UIConfig) UISettings {
	out := base
	for _, layer := range layers {
		out.Output = ResolveAndTrim(out.Output, layer.Output)
		out.Color = ResolveAndTrim(out.Color, layer.Color)
		out.Progress = Resolve(out.Progress, layer.Progress)
		out.Fields = ResolveAndTrim(out.Fields, layer.Fields)
		out.ShowLine = Resolve(out.ShowLine, layer.ShowLine)
		out.Group = Resolve(out.Group, layer.Group)
		out.LogLevel = ResolveAndTrim(out.LogLevel, layer.LogLevel)
	}
	if out.Output == "" {
		out.Output = "table"
	}
	if out.Color == "" {
		out.Color = "auto"
	}
	return out
}
