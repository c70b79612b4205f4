package output

import (
	"io"
	"strings"

	"github.com/phyten/todoreview/internal/model"
)

var tsvReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// WriteTSV writes a header row and one tab separated row per record. Tabs
// and newlines inside values become spaces.
func WriteTSV(w io.Writer, records []model.Record, sel FieldSelection) error {
	if _, err := io.WriteString(w, strings.Join(Headers(sel.Fields), "\t")+"\n"); err != nil {
		return err
	}
	for _, r := range records {
		row := RowValues(r, sel.Fields)
		for i := range row {
			row[i] = tsvReplacer.Replace(row[i])
		}
		if _, err := io.WriteString(w, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
