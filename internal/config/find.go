package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appName = "todoreview"

// ConfigEnv names the variable that points at an explicit config file.
const ConfigEnv = EnvPrefix + "CONFIG"

var extensions = []string{".yaml", ".yml", ".toml", ".json"}

// Where a config file was found, as reported by Find.
const (
	SourceExplicit = "explicit"
	SourceProject  = "cwd-up"
	SourceXDG      = "xdg"
	SourceHome     = "home"
)

type candidate struct {
	path   string
	source string
}

// Find は設定ファイルを探し、パスと見つかった場所を返す。どこにも無ければ
// 両方とも空文字列。startDir (通常は最初のスキャン対象) から親へ
// .todoreview.* を探し、次に XDG、最後にホームディレクトリを見る。
func Find(startDir, explicitPath, xdgHome, home string) (string, string, error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		path, err := filepath.Abs(explicit)
		if err != nil {
			return "", "", err
		}
		info, err := os.Stat(path)
		if err != nil {
			return "", "", err
		}
		if info.IsDir() {
			return "", "", fmt.Errorf("config %q is a directory", path)
		}
		return path, SourceExplicit, nil
	}

	candidates, err := searchPath(startDir, xdgHome, home)
	if err != nil {
		return "", "", err
	}
	for _, c := range candidates {
		if info, err := os.Stat(c.path); err == nil && info.Mode().IsRegular() {
			return c.path, c.source, nil
		}
	}
	return "", "", nil
}

// searchPath lists every location Find probes, in order.
func searchPath(startDir, xdgHome, home string) ([]candidate, error) {
	start := strings.TrimSpace(startDir)
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	var out []candidate
	dotfiles := func(dir, source string) {
		for _, ext := range extensions {
			out = append(out, candidate{filepath.Join(dir, "."+appName+ext), source})
		}
	}
	for {
		dotfiles(dir, SourceProject)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	home = strings.TrimSpace(home)
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	xdg := strings.TrimSpace(xdgHome)
	if xdg == "" && home != "" {
		xdg = filepath.Join(home, ".config")
	}
	if xdg != "" {
		for _, ext := range extensions {
			out = append(out, candidate{filepath.Join(xdg, appName, "config"+ext), SourceXDG})
		}
	}
	if home != "" {
		dotfiles(home, SourceHome)
	}
	return out, nil
}
