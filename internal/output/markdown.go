package output

import (
	"io"
	"strings"

	"github.com/phyten/todoreview/internal/model"
)

var markdownCell = strings.NewReplacer("\r\n", "<br>", "\r", "", "\n", "<br>", "|", `\|`)

// WriteMarkdownTable renders records as a GitHub Flavored Markdown table.
func WriteMarkdownTable(w io.Writer, records []model.Record, sel FieldSelection) error {
	headers := Headers(sel.Fields)
	rule := make([]string, len(headers))
	for i := range rule {
		rule[i] = "---"
	}
	var b strings.Builder
	writeMarkdownRow(&b, headers)
	writeMarkdownRow(&b, rule)
	for _, r := range records {
		row := RowValues(r, sel.Fields)
		for i, cell := range row {
			row[i] = markdownCell.Replace(cell)
		}
		writeMarkdownRow(&b, row)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}
