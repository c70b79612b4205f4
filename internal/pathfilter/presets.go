package pathfilter

import (
	"fmt"
	"sort"
	"strings"
)

// Preset names a baseline exclusion list.
type Preset string

const (
	PresetNone    Preset = "none"
	PresetDefault Preset = "default"
	PresetTypical Preset = "typical"
)

var vcsPatterns = []string{
	".git",
	".hg",
	".svn",
	".bzr",
	"CVS",
	"_darcs",
}

var binaryPatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.ico", "*.webp", "*.psd",
	"*.pdf", "*.zip", "*.gz", "*.tgz", "*.bz2", "*.xz", "*.7z", "*.rar", "*.tar",
	"*.jar", "*.war", "*.class", "*.pyc", "*.pyo", "*.o", "*.a", "*.so", "*.dylib",
	"*.dll", "*.exe", "*.obj", "*.lib", "*.bin", "*.dat", "*.db", "*.sqlite",
	"*.woff", "*.woff2", "*.ttf", "*.otf", "*.eot", "*.mp3", "*.mp4", "*.mov",
	"*.avi", "*.wav", "*.flac", "*.ogg",
	"*.DS_Store",
}

// dependency caches and build outputs
var typicalPatterns = []string{
	"vendor",
	"node_modules",
	"dist",
	"build",
	"target",
	"__pycache__",
	"*.min.*",
}

var presets = map[Preset][]string{
	PresetNone:    nil,
	PresetDefault: concat(vcsPatterns, binaryPatterns),
	PresetTypical: concat(vcsPatterns, binaryPatterns, typicalPatterns),
}

// ParsePreset canonicalizes a preset name; empty means PresetDefault.
func ParsePreset(raw string) (Preset, error) {
	name := Preset(strings.ToLower(strings.TrimSpace(raw)))
	if name == "" {
		return PresetDefault, nil
	}
	if _, ok := presets[name]; !ok {
		return "", fmt.Errorf("unknown preset: %s (want one of %s)", raw, strings.Join(PresetNames(), ", "))
	}
	return name, nil
}

// Patterns returns a copy of the preset's exclusion globs.
func (p Preset) Patterns() []string {
	return concat(presets[p])
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

func concat(lists ...[]string) []string {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]string, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
