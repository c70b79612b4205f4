package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phyten/todoreview/internal/engine"
	"github.com/phyten/todoreview/internal/model"
	"github.com/phyten/todoreview/internal/termcolor"
)

var sampleRecords = []model.Record{
	{
		ID:       1,
		File:     "/work/proj/internal/app/main.go",
		Line:     42,
		Tag:      "TODO",
		Text:     `TODO: refactor parser, handle "quotes" and commas`,
		Priority: 1,
	},
	{
		ID:       2,
		File:     "/work/proj/pkg/util/helpers.go",
		Line:     7,
		Tag:      "FIXME",
		Text:     "FIXME: escape pipes | for <markdown>",
		Priority: model.SentinelPriority,
	},
	{
		ID:       3,
		File:     "/work/docs/notes.md",
		Line:     3,
		Tag:      "TODO",
		Text:     "TODO: write docs",
		Priority: model.SentinelPriority,
	},
}

func sampleResult() *engine.Result {
	return &engine.Result{
		SessionID:      "00000000-0000-0000-0000-000000000000",
		Roots:          []string{"proj", "../docs"},
		ResolvedRoots:  []string{"/work/proj", "/work/docs"},
		Records:        sampleRecords,
		Total:          len(sampleRecords),
		FilesProcessed: 1234,
		Elapsed:        1500 * time.Millisecond,
		ElapsedMS:      1500,
		Tags:           []string{"FIXME", "TODO"},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleResult(), TableOptions{ShowLine: true}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	assertGolden(t, "want-table.txt", buf.String())
}

func TestWriteTableWithoutLineNumbers(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleResult(), TableOptions{}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	if !strings.Contains(buf.String(), "3.   docs/notes.md => TODO: write docs\n") {
		t.Fatalf("line numbers should be omitted:\n%s", buf.String())
	}
}

func TestWriteTableReportsPartialResults(t *testing.T) {
	res := sampleResult()
	res.Canceled = true
	res.MissingRoots = []string{"/gone"}
	res.ErrorCount = 2
	var buf bytes.Buffer
	if err := WriteTable(&buf, res, TableOptions{}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"# Missing:   [/gone]\n", "# Errors:    2\n", "# Status:    canceled\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteTableTruncatesToWidth(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleResult(), TableOptions{Width: 40}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	first := lines[len(lines)-3]
	if !strings.HasSuffix(first, "…") {
		t.Fatalf("long entry should be truncated with an ellipsis: %q", first)
	}
	if w := len([]rune(first)); w > 40 {
		t.Fatalf("entry should fit 40 columns, got %d: %q", w, first)
	}
}

func TestWriteTableColors(t *testing.T) {
	var buf bytes.Buffer
	painter := termcolor.Painter{Enabled: true, Profile: termcolor.ProfileBasic8}
	if err := WriteTable(&buf, sampleResult(), TableOptions{Painter: painter}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[31mp1.\x1b[0m") {
		t.Fatalf("priority token should be coloured:\n%q", out)
	}
	if !strings.Contains(out, "\x1b[1;31mFIXME\x1b[0m: escape pipes") {
		t.Fatalf("tag should be coloured:\n%q", out)
	}
}

func TestWriteGrouped(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGrouped(&buf, sampleResult(), TableOptions{}); err != nil {
		t.Fatalf("WriteGrouped failed: %v", err)
	}
	assertGolden(t, "want-grouped.txt", buf.String())
}

func TestWriteTSV(t *testing.T) {
	sel, err := ResolveFields("")
	if err != nil {
		t.Fatalf("ResolveFields failed: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteTSV(&buf, sampleRecords, sel); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	assertGolden(t, "want-tsv.tsv", buf.String())
}

func TestWriteTSVFlattensControlCharacters(t *testing.T) {
	sel, _ := ResolveFields("text")
	recs := []model.Record{{Text: "a\tb\nc"}}
	var buf bytes.Buffer
	if err := WriteTSV(&buf, recs, sel); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	if got, want := buf.String(), "TEXT\na b c\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWriteCSV(t *testing.T) {
	sel, err := ResolveFields("id,tag,priority,location,text")
	if err != nil {
		t.Fatalf("ResolveFields failed: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords, sel); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	assertGolden(t, "want-csv.csv", buf.String())
	if !strings.Contains(buf.String(), "\r\n") {
		t.Fatal("CSV output should use CRLF line endings")
	}
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNDJSON(&buf, sampleRecords); err != nil {
		t.Fatalf("WriteNDJSON failed: %v", err)
	}
	output := buf.String()
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	if len(lines) != len(sampleRecords) {
		t.Fatalf("expected %d lines, got %d", len(sampleRecords), len(lines))
	}
	for i, line := range lines {
		var rec model.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("failed to decode line %d: %v", i, err)
		}
		if rec != sampleRecords[i] {
			t.Fatalf("line %d decoded to %+v", i, rec)
		}
	}
	if strings.Contains(output, "\\u003c") {
		t.Fatal("HTML characters should not be escaped in NDJSON output")
	}
	assertGolden(t, "want-ndjson.ndjson", output)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"session_id", "roots", "records", "total", "files_processed", "elapsed_ms", "tags"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %q in %s", key, buf.String())
		}
	}
	if _, ok := decoded["Config"]; ok {
		t.Fatal("config snapshot must not be serialised")
	}
}

func TestWriteMarkdownTable(t *testing.T) {
	sel, err := ResolveFields("tag,location,text")
	if err != nil {
		t.Fatalf("ResolveFields failed: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteMarkdownTable(&buf, sampleRecords, sel); err != nil {
		t.Fatalf("WriteMarkdownTable failed: %v", err)
	}
	if !strings.Contains(buf.String(), "escape pipes \\| for") {
		t.Fatal("expected pipe characters to be escaped in markdown output")
	}
	assertGolden(t, "want-md.md", buf.String())
}

func TestEscapeMarkdownCell(t *testing.T) {
	if got, want := markdownCell.Replace("a\r\nb|c"), "a<br>b\\|c"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolveFields(t *testing.T) {
	sel, err := ResolveFields(" Tag , line ")
	if err != nil {
		t.Fatalf("ResolveFields failed: %v", err)
	}
	if got := strings.Join(Headers(sel.Fields), ","); got != "TAG,LINE" {
		t.Fatalf("headers = %s", got)
	}
	if _, err := ResolveFields("tag,,text"); err == nil {
		t.Fatal("empty entries should be rejected")
	}
	if _, err := ResolveFields("author"); err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unknown field should be rejected, got %v", err)
	}
	if got := RowValues(sampleRecords[1], sel.Fields); got[0] != "FIXME" || got[1] != "7" {
		t.Fatalf("row values = %v", got)
	}
}

func TestRenderDispatch(t *testing.T) {
	for _, format := range []string{"table", "tsv", "json", "ndjson", "csv", "markdown"} {
		var buf bytes.Buffer
		if err := Render(&buf, sampleResult(), Options{Format: format}); err != nil {
			t.Fatalf("Render(%s) failed: %v", format, err)
		}
		if buf.Len() == 0 {
			t.Fatalf("Render(%s) produced no output", format)
		}
	}
	if err := Render(&bytes.Buffer{}, sampleResult(), Options{Format: "xml"}); err == nil {
		t.Fatal("unknown formats should fail")
	}
}

func TestShortenPath(t *testing.T) {
	roots := []string{"/work/proj"}
	cases := map[string]string{
		"/work/proj/a/b.go":   filepath.Join("proj", "a", "b.go"),
		"/work/proj":          "proj",
		"/work/project/x.go":  "/work/project/x.go",
		"/elsewhere/file.txt": "/elsewhere/file.txt",
	}
	for in, want := range cases {
		if got := shortenPath(in, roots); got != want {
			t.Fatalf("shortenPath(%q)=%q want %q", in, got, want)
		}
	}
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	path := filepath.Join("testdata", name)
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", name, err)
	}
	if diff := diffStrings(string(want), got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func diffStrings(want, got string) string {
	if want == got {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("want:\n")
	buf.WriteString(want)
	if !strings.HasSuffix(want, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("got:\n")
	buf.WriteString(got)
	return buf.String()
}
