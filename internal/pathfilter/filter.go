// Package pathfilter decides which directory entries are eligible for scanning.
package pathfilter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Filter matches basenames against glob patterns (`*`, `?`, `[...]`).
// Exclusions apply to directories and files; inclusions only to files.
type Filter struct {
	excludes []string
	includes []string
}

// New builds a Filter from a baseline preset plus user globs. Every pattern
// is checked up front so a malformed glob is reported before a walk starts.
func New(preset Preset, excludes, includes []string) (*Filter, error) {
	f := &Filter{}
	for _, raw := range append(preset.Patterns(), excludes...) {
		p, err := checkGlob(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
		if p != "" {
			f.excludes = append(f.excludes, p)
		}
	}
	for _, raw := range includes {
		p, err := checkGlob(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern: %w", err)
		}
		if p != "" {
			f.includes = append(f.includes, p)
		}
	}
	return f, nil
}

func checkGlob(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", nil
	}
	if _, err := filepath.Match(p, ""); err != nil {
		return "", fmt.Errorf("%q: %w", raw, err)
	}
	return p, nil
}

// IsExcludedName reports whether name matches any exclusion glob.
func (f *Filter) IsExcludedName(name string) bool {
	return matchAny(f.excludes, name)
}

// IsIncludedName is true when no include globs are configured or name
// matches at least one of them.
func (f *Filter) IsIncludedName(name string) bool {
	if len(f.includes) == 0 {
		return true
	}
	return matchAny(f.includes, name)
}

// AllowDir reports whether the walker may descend into a directory.
func (f *Filter) AllowDir(name string) bool {
	return !f.IsExcludedName(name)
}

// AllowFile reports whether a file is scan-eligible.
func (f *Filter) AllowFile(name string) bool {
	return f.IsIncludedName(name) && !f.IsExcludedName(name)
}

// Excludes returns the effective exclusion globs.
func (f *Filter) Excludes() []string {
	return append([]string(nil), f.excludes...)
}

func matchAny(patterns []string, name string) bool {
	if name == "" {
		return false
	}
	for _, p := range patterns {
		// patterns were validated in New
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
