// Package fsys is the read-only filesystem surface used by the walker and
// the scanner. Production code runs on the host filesystem through go-billy's
// osfs; tests swap in memfs.
package fsys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

const maxLinkHops = 40

// ErrTooManyLinks is returned when resolving a path loops through symlinks.
var ErrTooManyLinks = errors.New("too many levels of symbolic links")

// FS is the subset of billy.Filesystem the scanner needs.
type FS interface {
	Open(filename string) (billy.File, error)
	Stat(filename string) (os.FileInfo, error)
	Lstat(filename string) (os.FileInfo, error)
	ReadDir(path string) ([]os.FileInfo, error)
	Readlink(link string) (string, error)
}

// OS returns the host filesystem rooted at "/".
func OS() FS {
	return osfs.New(string(filepath.Separator))
}

// ExpandHome replaces a leading "~" with home.
func ExpandHome(p, home string) string {
	if home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return filepath.Join(home, p[2:])
	}
	return p
}

// Abs makes p absolute against cwd and cleans it.
func Abs(p, cwd string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}

// Realpath resolves every symlink in the absolute path p using fsys.
func Realpath(fsys FS, p string) (string, error) {
	if !filepath.IsAbs(p) {
		return "", fmt.Errorf("realpath %q: path is not absolute", p)
	}
	root := string(filepath.Separator)
	parts := split(p)
	resolved := root
	hops := 0
	for len(parts) > 0 {
		part := parts[0]
		parts = parts[1:]
		switch part {
		case "", ".":
			continue
		case "..":
			resolved = filepath.Dir(resolved)
			continue
		}
		next := filepath.Join(resolved, part)
		info, err := fsys.Lstat(next)
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			resolved = next
			continue
		}
		hops++
		if hops > maxLinkHops {
			return "", fmt.Errorf("realpath %q: %w", p, ErrTooManyLinks)
		}
		target, err := fsys.Readlink(next)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(resolved, target)
		}
		parts = append(split(target), parts...)
		resolved = root
	}
	return resolved, nil
}

func split(p string) []string {
	clean := filepath.Clean(p)
	trimmed := strings.TrimPrefix(clean, string(filepath.Separator))
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, string(filepath.Separator))
}

// IsNotExist reports whether err means the path does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
