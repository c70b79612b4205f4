package output

import (
	"encoding/json"
	"io"

	"github.com/phyten/todoreview/internal/engine"
	"github.com/phyten/todoreview/internal/model"
)

// WriteJSON writes the whole result as one indented document.
func WriteJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteNDJSON streams records as newline-delimited JSON objects.
func WriteNDJSON(w io.Writer, records []model.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
