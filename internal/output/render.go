package output

import (
	"fmt"
	"io"

	"github.com/phyten/todoreview/internal/engine"
	"github.com/phyten/todoreview/internal/termcolor"
)

// Options selects the format and layout for Render.
type Options struct {
	// Format is one of table, tsv, json, ndjson, csv or markdown.
	Format   string
	Fields   FieldSelection
	ShowLine bool
	// Group switches the table format to per-tag sections.
	Group   bool
	Width   int
	Painter termcolor.Painter
}

// Render writes res to w in the requested format.
func Render(w io.Writer, res *engine.Result, opts Options) error {
	if len(opts.Fields.Fields) == 0 {
		sel, err := ResolveFields("")
		if err != nil {
			return err
		}
		opts.Fields = sel
	}
	table := TableOptions{ShowLine: opts.ShowLine, Width: opts.Width, Painter: opts.Painter}
	switch opts.Format {
	case "", "table":
		if opts.Group {
			return WriteGrouped(w, res, table)
		}
		return WriteTable(w, res, table)
	case "tsv":
		return WriteTSV(w, res.Records, opts.Fields)
	case "json":
		return WriteJSON(w, res)
	case "ndjson":
		return WriteNDJSON(w, res.Records)
	case "csv":
		return WriteCSV(w, res.Records, opts.Fields)
	case "markdown":
		return WriteMarkdownTable(w, res.Records, opts.Fields)
	default:
		return fmt.Errorf("unknown output format: %s", opts.Format)
	}
}
