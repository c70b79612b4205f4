package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/phyten/todoreview/internal/engine"
	"github.com/phyten/todoreview/internal/model"
	"github.com/phyten/todoreview/internal/termcolor"
	"github.com/phyten/todoreview/internal/textutil"
)

// TableOptions controls the human readable layouts.
type TableOptions struct {
	// ShowLine appends ":line" to every path.
	ShowLine bool
	// Width truncates each entry to this many terminal columns. 0 disables it.
	Width   int
	Painter termcolor.Painter
}

const (
	headerLabelWidth = 12
	indexWidth       = 5
	lineWidth        = 5
	ellipsis         = "…"
)

// WriteTable renders the session header followed by one numbered line per
// record:
//
//	# From:      [proj, docs]
//	# No.Files:  42
//	# Time:      0.12s
//
//
//	1.   proj/main.go:12    => p1.TODO fix the parser
func WriteTable(w io.Writer, res *engine.Result, opts TableOptions) error {
	var b strings.Builder
	writeSessionHeader(&b, res, opts.Painter)
	b.WriteString("\n\n")
	roots := displayRoots(res)
	for _, r := range res.Records {
		prefix := textutil.PadRight(strconv.Itoa(r.ID)+".", indexWidth) + shortenPath(r.File, roots)
		if opts.ShowLine {
			prefix += ":" + textutil.PadRight(strconv.Itoa(r.Line), lineWidth)
		}
		prefix += " => "
		b.WriteString(prefix)
		b.WriteString(entryText(r, opts, textutil.VisibleWidth(prefix)))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteGrouped renders the session header and one "## TAG (count)" section
// per tag. Sections follow the order in which tags first appear in the
// sorted records; entries are numbered per section.
func WriteGrouped(w io.Writer, res *engine.Result, opts TableOptions) error {
	var b strings.Builder
	writeSessionHeader(&b, res, opts.Painter)
	for _, g := range groupByTag(res.Records) {
		fmt.Fprintf(&b, "\n%s\n", opts.Painter.Header(fmt.Sprintf("## %s (%d)", strings.ToUpper(g.tag), len(g.records))))
		labels := make([]string, len(g.records))
		widest := 0
		for i, r := range g.records {
			labels[i] = fmt.Sprintf("%d. %s:%d", i+1, parentAndBase(r.File), r.Line)
			widest = max(widest, textutil.VisibleWidth(labels[i]))
		}
		for i, r := range g.records {
			label := textutil.PadRight(labels[i], widest+1)
			b.WriteString(label)
			b.WriteString(entryText(r, opts, widest+1))
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSessionHeader(b *strings.Builder, res *engine.Result, p termcolor.Painter) {
	label := func(s string) string {
		return p.Dim(textutil.PadRight(s, headerLabelWidth))
	}
	names := make([]string, 0, len(res.Roots))
	for _, root := range headerRoots(res) {
		names = append(names, baseName(root))
	}
	fmt.Fprintf(b, "%s [%s]\n", label("# From:"), strings.Join(names, ", "))
	fmt.Fprintf(b, "%s %s\n", label("# No.Files:"), humanize.Comma(int64(res.FilesProcessed)))
	fmt.Fprintf(b, "%s %.2fs\n", label("# Time:"), res.ElapsedSeconds())
	if len(res.MissingRoots) > 0 {
		fmt.Fprintf(b, "%s [%s]\n", label("# Missing:"), strings.Join(res.MissingRoots, ", "))
	}
	if res.ErrorCount > 0 {
		fmt.Fprintf(b, "%s %s\n", label("# Errors:"), humanize.Comma(int64(res.ErrorCount)))
	}
	if res.Canceled {
		fmt.Fprintf(b, "%s canceled\n", label("# Status:"))
	}
}

// entryText renders the priority token and the text, truncated so the whole
// line fits opts.Width.
func entryText(r model.Record, opts TableOptions, used int) string {
	token := ""
	if r.HasPriority() {
		token = "p" + strconv.Itoa(r.Priority) + "."
	}
	text := r.Text
	if opts.Width > 0 {
		room := opts.Width - used - textutil.VisibleWidth(token)
		text = textutil.Truncate(text, max(room, 0), ellipsis)
	}
	if token != "" {
		token = opts.Painter.Priority(r.Priority, token)
	}
	if r.Tag != "" && strings.HasPrefix(text, r.Tag) {
		text = opts.Painter.Tag(r.Tag) + text[len(r.Tag):]
	}
	return token + text
}

type tagGroup struct {
	tag     string
	records []model.Record
}

func groupByTag(records []model.Record) []tagGroup {
	var groups []tagGroup
	index := map[string]int{}
	for _, r := range records {
		i, ok := index[r.Tag]
		if !ok {
			i = len(groups)
			index[r.Tag] = i
			groups = append(groups, tagGroup{tag: r.Tag})
		}
		groups[i].records = append(groups[i].records, r)
	}
	return groups
}

func headerRoots(res *engine.Result) []string {
	if len(res.ResolvedRoots) > 0 {
		return res.ResolvedRoots
	}
	return res.Roots
}

func displayRoots(res *engine.Result) []string {
	roots := make([]string, 0, len(res.ResolvedRoots))
	for _, r := range res.ResolvedRoots {
		roots = append(roots, filepath.Clean(r))
	}
	return roots
}

// shortenPath replaces the scan root a file lives under with the root's
// base name.
func shortenPath(file string, roots []string) string {
	for _, root := range roots {
		if file == root {
			return baseName(root)
		}
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(file, prefix) {
			return filepath.Join(baseName(root), file[len(prefix):])
		}
	}
	return file
}

func parentAndBase(file string) string {
	dir := filepath.Base(filepath.Dir(file))
	if dir == "." || dir == string(filepath.Separator) {
		return filepath.Base(file)
	}
	return dir + "/" + filepath.Base(file)
}

func baseName(p string) string {
	return filepath.Base(filepath.Clean(p))
}
