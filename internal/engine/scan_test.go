package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phyten/todoreview/internal/model"
	"github.com/phyten/todoreview/internal/pattern"
)

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
	infos    []string
}

func (l *recordingLogger) Debugf(string, ...any) {}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Errorf(format string, args ...any) { l.Warnf(format, args...) }

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.warnings)
}

func write(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
}

func defaultMarkers() map[string]string {
	return map[string]string{
		"TODO":  pattern.DefaultFragment("TODO"),
		"FIXME": pattern.DefaultFragment("FIXME"),
	}
}

func newTestScanner(t *testing.T, fs billy.Filesystem, maxBytes int64) (*Scanner, *recordingLogger) {
	t.Helper()
	set, err := pattern.Compile(defaultMarkers(), pattern.DefaultPriorityPattern, true)
	require.NoError(t, err)
	log := &recordingLogger{}
	return NewScanner(fs, set, log, "todoreview", maxBytes), log
}

func TestScanFileEmitsRecordsInLineOrder(t *testing.T) {
	mem := memfs.New()
	write(t, mem, "/src/a.go", "\xEF\xBB\xBFTODO: first\r\npackage a\n// FIXME(1): second\n// TODO(2): fix this")

	s, _ := newTestScanner(t, mem, 0)
	recs, ferr := s.ScanFile("/src/a.go")
	require.Nil(t, ferr)

	assert.Equal(t, []model.Record{
		{File: "/src/a.go", Line: 1, Tag: "TODO", Text: "TODO: first", Priority: model.SentinelPriority},
		{File: "/src/a.go", Line: 3, Tag: "FIXME", Text: "FIXME: second", Priority: 1},
		{File: "/src/a.go", Line: 4, Tag: "TODO", Text: "TODO: fix this", Priority: 2},
	}, recs)
}

func TestScanFileFailures(t *testing.T) {
	mem := memfs.New()
	write(t, mem, "/src/nul.txt", "TODO: ok\nbin\x00ary\n")
	write(t, mem, "/src/latin1.txt", "// TODO: caf\xe9\n")
	write(t, mem, "/src/big.txt", "TODO: big file\n")

	s, _ := newTestScanner(t, mem, 8)
	cases := []struct {
		path  string
		stage string
		is    error
	}{
		{"/src/nul.txt", "size", ErrTooLarge},
		{"/src/big.txt", "size", ErrTooLarge},
		{"/src/missing.txt", "stat", nil},
	}
	for _, tc := range cases {
		recs, ferr := s.ScanFile(tc.path)
		require.NotNil(t, ferr, tc.path)
		assert.Empty(t, recs)
		assert.Equal(t, tc.stage, ferr.Stage, tc.path)
		if tc.is != nil {
			assert.ErrorIs(t, ferr, tc.is)
		}
		assert.Equal(t, KindReadFailed, KindOf(ferr))
	}

	s, _ = newTestScanner(t, mem, 0)
	for _, path := range []string{"/src/nul.txt", "/src/latin1.txt"} {
		recs, ferr := s.ScanFile(path)
		require.NotNil(t, ferr, path)
		assert.Empty(t, recs, "a file failing part-way contributes nothing")
		assert.Equal(t, "decode", ferr.Stage)
		assert.True(t, errors.Is(ferr, ErrNotText))
	}

	_, ferr := s.ScanFile("/src/missing.txt")
	require.NotNil(t, ferr)
	assert.Equal(t, "open", ferr.Stage)
}

func TestScanCountsEveryAttempt(t *testing.T) {
	mem := memfs.New()
	write(t, mem, "/src/a.txt", "TODO: a\n")
	write(t, mem, "/src/b.txt", "\x00\x01\x02")
	write(t, mem, "/src/c.txt", "FIXME: c\n")

	s, log := newTestScanner(t, mem, 0)
	visits := 0
	paths := slices.Values([]string{"/src/a.txt", "/src/b.txt", "/src/c.txt", "/src/gone.txt"})
	tally := s.Scan(context.Background(), paths, func() { visits++ })

	assert.Equal(t, 4, visits)
	assert.Len(t, tally.Records, 2)
	require.Len(t, tally.Errors, 2)
	assert.Equal(t, "/src/b.txt", tally.Errors[0].Path)
	assert.Equal(t, "/src/gone.txt", tally.Errors[1].Path)

	warnings := log.Warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "todoreview: Can't read '/src/b.txt', error: ")
}

func TestScanStopsWhenCancelled(t *testing.T) {
	mem := memfs.New()
	write(t, mem, "/src/a.txt", "TODO: a\n")
	write(t, mem, "/src/b.txt", "TODO: b\n")

	s, _ := newTestScanner(t, mem, 0)
	ctx, cancel := context.WithCancel(context.Background())
	visits := 0
	tally := s.Scan(ctx, slices.Values([]string{"/src/a.txt", "/src/b.txt"}), func() {
		visits++
		cancel()
	})
	assert.Equal(t, 1, visits)
	require.Len(t, tally.Records, 1)
	assert.Equal(t, "TODO: a", tally.Records[0].Text)
}

func TestScanFileLanguageFilter(t *testing.T) {
	mem := memfs.New()
	write(t, mem, "/src/a.go", "// TODO: go\n")
	write(t, mem, "/src/b.py", "# TODO: python\n")
	write(t, mem, "/src/tool", "#!/usr/bin/env python3\n# TODO: script\n")
	write(t, mem, "/src/blob", "TODO: unknown\n")

	s, _ := newTestScanner(t, mem, 0)
	s.WithLanguages([]string{"python"})

	recs, ferr := s.ScanFile("/src/a.go")
	require.Nil(t, ferr)
	assert.Empty(t, recs, "対象外の言語は読み飛ばす")

	recs, ferr = s.ScanFile("/src/b.py")
	require.Nil(t, ferr)
	assert.Len(t, recs, 1)

	recs, ferr = s.ScanFile("/src/tool")
	require.Nil(t, ferr)
	require.Len(t, recs, 1, "shebang から言語を判定する")
	assert.Equal(t, 2, recs[0].Line)

	recs, ferr = s.ScanFile("/src/blob")
	require.Nil(t, ferr)
	assert.Empty(t, recs)
}
