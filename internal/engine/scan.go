package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/phyten/todoreview/internal/detect"
	"github.com/phyten/todoreview/internal/fsys"
	"github.com/phyten/todoreview/internal/logger"
	"github.com/phyten/todoreview/internal/model"
	"github.com/phyten/todoreview/internal/pattern"
)

// DefaultLogTag prefixes diagnostics when Options.LogTag is empty.
const DefaultLogTag = "todoreview"

const (
	readBufferSize = 64 * 1024
	langSniffBytes = 512
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Scanner はファイルを 1 行ずつ読み、マーカーに一致した行を Record にする。
type Scanner struct {
	fs       fsys.FS
	patterns *pattern.Set
	log      logger.Logger
	tag      string
	maxBytes int64
	langs    []string
}

// NewScanner returns a Scanner reading through fs.
func NewScanner(fs fsys.FS, patterns *pattern.Set, log logger.Logger, tag string, maxBytes int64) *Scanner {
	if log == nil {
		log = logger.Nop()
	}
	if tag == "" {
		tag = DefaultLogTag
	}
	return &Scanner{fs: fs, patterns: patterns, log: log, tag: tag, maxBytes: maxBytes}
}

// WithLanguages limits ScanFile to files detected as one of langs. Other
// files are opened for detection only and yield no records.
func (s *Scanner) WithLanguages(langs []string) *Scanner {
	s.langs = langs
	return s
}

// Tally は Scan の集計結果。
type Tally struct {
	Records []model.Record
	Errors  []FileReadError
}

// Scan reads every path in order. visited is called once per attempted file,
// whether or not it could be read, before the next path is taken. Scan
// returns early when ctx is cancelled; records already gathered are kept.
func (s *Scanner) Scan(ctx context.Context, paths iter.Seq[string], visited func()) Tally {
	var t Tally
	for path := range paths {
		if ctx.Err() != nil {
			break
		}
		records, err := s.ScanFile(path)
		if err != nil {
			s.log.Warnf("%s: Can't read '%s', error: %s", s.tag, path, err.Message)
			t.Errors = append(t.Errors, *err)
		} else {
			t.Records = append(t.Records, records...)
		}
		if visited != nil {
			visited()
		}
	}
	return t
}

// ScanFile returns the records of one file in line order. A file that fails
// part-way yields no records.
func (s *Scanner) ScanFile(path string) ([]model.Record, *FileReadError) {
	if s.maxBytes > 0 {
		info, err := s.fs.Stat(path)
		if err != nil {
			return nil, newFileReadError(path, "stat", err)
		}
		if info.Size() > s.maxBytes {
			return nil, newFileReadError(path, "size", fmt.Errorf("%w: %s > %s", ErrTooLarge,
				humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(s.maxBytes))))
		}
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, newFileReadError(path, "open", err)
	}
	defer f.Close()

	var records []model.Record
	r := bufio.NewReaderSize(f, readBufferSize)
	if len(s.langs) > 0 {
		head, _ := r.Peek(langSniffBytes)
		if !detect.Matches(detect.Language(path, head), s.langs) {
			return nil, nil
		}
	}
	lineNo := 0
	for {
		raw, readErr := r.ReadBytes('\n')
		if len(raw) > 0 {
			lineNo++
			line, err := decodeLine(raw, lineNo)
			if err != nil {
				return nil, newFileReadError(path, "decode", err)
			}
			records = s.appendMatches(records, path, lineNo, line)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, newFileReadError(path, "read", readErr)
		}
	}
	return records, nil
}

func (s *Scanner) appendMatches(records []model.Record, path string, lineNo int, line string) []model.Record {
	for _, hit := range s.patterns.Match(line) {
		text, prio := s.patterns.Resolve(hit.Text)
		records = append(records, model.Record{
			File:     path,
			Line:     lineNo,
			Tag:      hit.Tag,
			Text:     text,
			Priority: prio,
		})
	}
	return records
}

func decodeLine(raw []byte, lineNo int) (string, error) {
	raw = bytes.TrimSuffix(raw, []byte("\n"))
	raw = bytes.TrimSuffix(raw, []byte("\r"))
	if lineNo == 1 {
		raw = bytes.TrimPrefix(raw, utf8BOM)
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", fmt.Errorf("%w: NUL byte at line %d", ErrNotText, lineNo)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: invalid UTF-8 at line %d", ErrNotText, lineNo)
	}
	return strings.Clone(string(raw)), nil
}
