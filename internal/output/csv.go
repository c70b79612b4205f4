package output

import (
	"encoding/csv"
	"io"

	"github.com/phyten/todoreview/internal/model"
)

// WriteCSV renders records as RFC 4180 compliant CSV (including CRLF endings).
func WriteCSV(w io.Writer, records []model.Record, sel FieldSelection) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	if err := writer.Write(Headers(sel.Fields)); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(RowValues(r, sel.Fields)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
