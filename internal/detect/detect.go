// Package detect guesses a file's language from its name, falling back to
// the shebang line.
package detect

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Language returns the canonical language of path, or "" when unknown.
// head is the beginning of the file and is only consulted for names that
// carry no hint (scripts without an extension).
func Language(path string, head []byte) string {
	if lang := byName(path); lang != "" {
		if lang == "objective-c" && strings.EqualFold(filepath.Ext(path), ".m") && looksLikeMatlab(head) {
			return "matlab"
		}
		return lang
	}
	return byShebang(head)
}

func byName(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if lang, ok := basenames[base]; ok {
		return lang
	}
	ext := filepath.Ext(base)
	if ext == "" {
		return ""
	}
	// .d.ts, .blade.php and friends
	if lang, ok := extensions[filepath.Ext(strings.TrimSuffix(base, ext))+ext]; ok {
		return lang
	}
	return extensions[ext]
}

func byShebang(head []byte) string {
	if !bytes.HasPrefix(head, []byte("#!")) {
		return ""
	}
	line := head
	if end := bytes.IndexByte(head, '\n'); end >= 0 {
		line = head[:end]
	}
	fields := strings.Fields(strings.ToLower(string(line[2:])))
	if len(fields) == 0 {
		return ""
	}
	interp := filepath.Base(fields[0])
	if interp == "env" {
		interp = ""
		for _, f := range fields[1:] {
			if !strings.HasPrefix(f, "-") {
				interp = filepath.Base(f)
				break
			}
		}
	}
	interp = strings.TrimRight(interp, "0123456789.")
	return interpreters[interp]
}

func looksLikeMatlab(head []byte) bool {
	for _, raw := range bytes.Split(head, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#import"), strings.HasPrefix(line, "@interface"), strings.HasPrefix(line, "@implementation"):
			return false
		case strings.HasPrefix(line, "%"), strings.HasPrefix(line, "function "), strings.HasPrefix(line, "classdef "):
			return true
		}
	}
	return false
}

// Normalize lower-cases name and resolves aliases such as "js" or "py".
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := aliases[n]; ok {
		return canon
	}
	return n
}

// Known reports whether name (or its alias) is a language Language can return.
func Known(name string) bool {
	_, ok := known[Normalize(name)]
	return ok
}

// Canonical normalizes and de-duplicates values, keeping their order.
// Unknown names are an error.
func Canonical(values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		norm := Normalize(raw)
		if norm == "" {
			continue
		}
		if !Known(norm) {
			return nil, fmt.Errorf("unknown language: %s", raw)
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out, nil
}

// Matches reports whether lang is in allow. An empty allow list matches
// everything, an unknown lang matches nothing else.
func Matches(lang string, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	if lang == "" {
		return false
	}
	for _, a := range allow {
		if Normalize(a) == lang {
			return true
		}
	}
	return false
}

// Names lists every language Language can return, sorted.
func Names() []string {
	out := make([]string, 0, len(known))
	for name := range known {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var aliases = map[string]string{
	"js":         "javascript",
	"ts":         "typescript",
	"py":         "python",
	"rb":         "ruby",
	"c++":        "cpp",
	"cxx":        "cpp",
	"objc":       "objective-c",
	"cs":         "csharp",
	"c#":         "csharp",
	"golang":     "go",
	"sh":         "shell",
	"bash":       "shell",
	"zsh":        "shell",
	"kt":         "kotlin",
	"rs":         "rust",
	"md":         "markdown",
	"yml":        "yaml",
	"tf":         "terraform",
	"dockerfile": "docker",
}

var basenames = map[string]string{
	"makefile":       "make",
	"gnumakefile":    "make",
	"justfile":       "make",
	"cmakelists.txt": "cmake",
	"dockerfile":     "docker",
	"containerfile":  "docker",
	"jenkinsfile":    "groovy",
	"gemfile":        "ruby",
	"rakefile":       "ruby",
	"vagrantfile":    "ruby",
	"podfile":        "ruby",
	"build":          "starlark",
	"build.bazel":    "starlark",
	"workspace":      "starlark",
}

var extensions = map[string]string{
	".c": "c", ".h": "c",
	".cc": "cpp", ".cpp": "cpp", ".cxx": "cpp", ".hh": "cpp", ".hpp": "cpp", ".hxx": "cpp",
	".m": "objective-c", ".mm": "objective-c",
	".go": "go",
	".js": "javascript", ".mjs": "javascript", ".cjs": "javascript", ".jsx": "javascript",
	".ts": "typescript", ".mts": "typescript", ".cts": "typescript", ".tsx": "typescript", ".d.ts": "typescript",
	".py": "python", ".pyw": "python", ".pyi": "python", ".pyx": "python",
	".rb": "ruby", ".rake": "ruby", ".gemspec": "ruby", ".erb": "ruby",
	".php": "php", ".phtml": "php", ".blade.php": "php",
	".cs": "csharp", ".fs": "fsharp", ".vb": "vb",
	".java": "java", ".kt": "kotlin", ".kts": "kotlin", ".scala": "scala", ".groovy": "groovy", ".gradle": "groovy",
	".swift": "swift", ".rs": "rust", ".dart": "dart", ".zig": "zig", ".nim": "nim",
	".erl": "erlang", ".hrl": "erlang", ".ex": "elixir", ".exs": "elixir",
	".hs": "haskell", ".ml": "ocaml", ".mli": "ocaml", ".clj": "clojure", ".cljs": "clojure", ".elm": "elm",
	".lua": "lua", ".pl": "perl", ".pm": "perl", ".r": "r", ".jl": "julia",
	".sh": "shell", ".bash": "shell", ".zsh": "shell", ".fish": "fish", ".ps1": "powershell", ".bat": "batch", ".cmd": "batch",
	".sql": "sql", ".proto": "proto", ".graphql": "graphql", ".gql": "graphql",
	".json": "json", ".yaml": "yaml", ".yml": "yaml", ".toml": "toml", ".ini": "ini", ".cfg": "ini",
	".tf": "terraform", ".hcl": "hcl", ".cue": "cue", ".bzl": "starlark", ".star": "starlark",
	".md": "markdown", ".markdown": "markdown", ".rst": "rst", ".adoc": "asciidoc", ".tex": "latex", ".txt": "text",
	".html": "html", ".htm": "html", ".vue": "vue", ".svelte": "svelte", ".xml": "xml",
	".css": "css", ".scss": "scss", ".sass": "scss", ".less": "less",
	".tmpl": "gotemplate", ".gotmpl": "gotemplate",
	".cmake": "cmake", ".mk": "make", ".dockerfile": "docker",
	".v": "verilog", ".sv": "verilog", ".vhd": "vhdl",
}

var interpreters = map[string]string{
	"python": "python",
	"pypy":   "python",
	"node":   "javascript",
	"deno":   "typescript",
	"bun":    "javascript",
	"ruby":   "ruby",
	"perl":   "perl",
	"php":    "php",
	"sh":     "shell",
	"bash":   "shell",
	"dash":   "shell",
	"zsh":    "shell",
	"ksh":    "shell",
	"fish":   "fish",
	"pwsh":   "powershell",
	"lua":    "lua",
	"rscript": "r",
	"julia":  "julia",
	"escript": "erlang",
	"elixir": "elixir",
	"groovy": "groovy",
}

var known = func() map[string]struct{} {
	out := map[string]struct{}{"matlab": {}}
	for _, m := range []map[string]string{basenames, extensions, interpreters} {
		for _, lang := range m {
			out[lang] = struct{}{}
		}
	}
	return out
}()
