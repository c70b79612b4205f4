// Package link turns a record location into something another program can
// open: an editor command line or a URL.
package link

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
)

// Schemes lists the URL flavours URL understands.
var Schemes = []string{"file", "vscode", "cursor", "idea", "subl"}

// URL はファイルと行番号から scheme 形式の URL を生成します。
// file の URL は行番号を #L フラグメントで表します。
func URL(scheme, file string, line int) (string, error) {
	if file == "" {
		return "", fmt.Errorf("empty file path")
	}
	path := filepath.ToSlash(file)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", "file":
		u := url.URL{Scheme: "file", Path: path}
		if line > 0 {
			u.Fragment = "L" + strconv.Itoa(line)
		}
		return u.String(), nil
	case "vscode", "cursor":
		u := url.URL{Scheme: strings.ToLower(scheme), Host: "file", Path: path + lineSuffix(line)}
		return u.String(), nil
	case "idea":
		q := url.Values{"file": {file}}
		if line > 0 {
			q.Set("line", strconv.Itoa(line))
		}
		return "idea://open?" + q.Encode(), nil
	case "subl":
		q := url.Values{"url": {(&url.URL{Scheme: "file", Path: path}).String()}}
		if line > 0 {
			q.Set("line", strconv.Itoa(line))
		}
		return "subl://open?" + q.Encode(), nil
	default:
		return "", fmt.Errorf("unknown URL scheme: %s (want %s)", scheme, strings.Join(Schemes, "|"))
	}
}

// Location is the conventional "path:line" form understood by most tools.
func Location(file string, line int) string {
	return file + lineSuffix(line)
}

// EditorCommand splits editor (as found in $EDITOR, which may carry flags)
// and appends the arguments that open file at line.
func EditorCommand(editor, file string, line int) (string, []string, error) {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty editor command")
	}
	name, args := fields[0], fields[1:]
	base := strings.TrimSuffix(strings.ToLower(filepath.Base(name)), ".exe")
	switch base {
	case "vi", "vim", "nvim", "gvim", "mvim", "nano", "emacs", "emacsclient", "kak", "micro", "joe", "mg":
		if line > 0 {
			args = append(args, "+"+strconv.Itoa(line))
		}
		args = append(args, file)
	case "code", "code-insiders", "codium", "cursor", "windsurf":
		args = append(args, "--goto", Location(file, line))
	case "idea", "goland", "pycharm", "webstorm", "clion", "rubymine", "phpstorm", "rider":
		if line > 0 {
			args = append(args, "--line", strconv.Itoa(line))
		}
		args = append(args, file)
	case "subl", "sublime_text", "zed", "hx", "helix", "mate", "atom":
		args = append(args, Location(file, line))
	default:
		args = append(args, file)
	}
	return name, args, nil
}

func lineSuffix(line int) string {
	if line <= 0 {
		return ""
	}
	return ":" + strconv.Itoa(line)
}
