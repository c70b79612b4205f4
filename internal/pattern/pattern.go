// Package pattern compiles marker and priority patterns into matchers.
//
// Every marker fragment is wrapped in its own capture group and the fragments
// are joined into one alternation, so a single pass over a line reports which
// tags matched. A fragment may declare a named group "text" (or "todo") to
// narrow the reported text to that group.
package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/phyten/todoreview/internal/model"
)

// DefaultPriorityPattern extracts one or two digits in parentheses, e.g. "(2)".
const DefaultPriorityPattern = `\(([0-9]{1,2})\)`

var textGroupNames = []string{"text", "todo"}

// Error reports a fragment that failed to compile.
type Error struct {
	Tag     string
	Pattern string
	Err     error
}

func (e *Error) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("invalid priority pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("invalid marker pattern for %s %q: %v", e.Tag, e.Pattern, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Hit is one tag that participated in a match on a line.
type Hit struct {
	Tag  string
	Text string
}

type group struct {
	tag   string
	outer int
	inner int
}

// Set holds the compiled marker alternation and the priority matcher.
type Set struct {
	markers  *regexp.Regexp
	groups   []group
	priority *regexp.Regexp
	prioIdx  int
}

// DefaultFragment returns the fragment used for a tag given without a pattern.
func DefaultFragment(tag string) string {
	return regexp.QuoteMeta(strings.TrimSpace(tag)) + ".*"
}

// Compile builds a Set. Blank fragments are skipped; an empty marker map
// yields a Set that never matches. Any fragment that fails to compile is
// reported immediately.
func Compile(markers map[string]string, priorityPattern string, caseSensitive bool) (*Set, error) {
	flags := ""
	if !caseSensitive {
		flags = "(?i)"
	}

	tags := make([]string, 0, len(markers))
	for tag := range markers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	s := &Set{}
	var parts []string
	next := 1
	for _, tag := range tags {
		fragment := strings.TrimSpace(markers[tag])
		name := strings.TrimSpace(tag)
		if fragment == "" {
			continue
		}
		if name == "" {
			return nil, &Error{Tag: tag, Pattern: fragment, Err: fmt.Errorf("empty tag name")}
		}
		alone, err := regexp.Compile(flags + fragment)
		if err != nil {
			return nil, &Error{Tag: name, Pattern: fragment, Err: err}
		}
		g := group{tag: name, outer: next, inner: -1}
		for _, want := range textGroupNames {
			if idx := alone.SubexpIndex(want); idx > 0 {
				g.inner = next + idx
				break
			}
		}
		s.groups = append(s.groups, g)
		parts = append(parts, "("+fragment+")")
		next += 1 + alone.NumSubexp()
	}
	if len(parts) > 0 {
		combined := flags + strings.Join(parts, "|")
		re, err := regexp.Compile(combined)
		if err != nil {
			return nil, &Error{Tag: "*", Pattern: combined, Err: err}
		}
		s.markers = re
	}

	if p := strings.TrimSpace(priorityPattern); p != "" {
		re, err := regexp.Compile(flags + p)
		if err != nil {
			return nil, &Error{Pattern: p, Err: err}
		}
		s.priority = re
		switch {
		case re.SubexpIndex("priority") > 0:
			s.prioIdx = re.SubexpIndex("priority")
		case re.NumSubexp() > 0:
			s.prioIdx = 1
		}
	}
	return s, nil
}

// Empty reports whether the Set can never match.
func (s *Set) Empty() bool {
	return s == nil || s.markers == nil
}

// Tags returns the compiled tag names in alternation order.
func (s *Set) Tags() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.tag
	}
	return out
}

// Match returns every tag that participated in a match on line, in the
// order the matches occur.
func (s *Set) Match(line string) []Hit {
	if s.Empty() {
		return nil
	}
	all := s.markers.FindAllStringSubmatchIndex(line, -1)
	if len(all) == 0 {
		return nil
	}
	var hits []Hit
	for _, loc := range all {
		for _, g := range s.groups {
			if loc[2*g.outer] < 0 {
				continue
			}
			text := line[loc[2*g.outer]:loc[2*g.outer+1]]
			if g.inner > 0 {
				if loc[2*g.inner] < 0 {
					text = ""
				} else {
					text = line[loc[2*g.inner]:loc[2*g.inner+1]]
				}
			}
			hits = append(hits, Hit{Tag: g.tag, Text: text})
		}
	}
	return hits
}

// Priority looks for a priority token in text. It returns the parsed value,
// the literal token to strip, and whether a token was found.
func (s *Set) Priority(text string) (int, string, bool) {
	if s == nil || s.priority == nil {
		return 0, "", false
	}
	loc := s.priority.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, "", false
	}
	token := text[loc[0]:loc[1]]
	digits := token
	if s.prioIdx > 0 {
		if loc[2*s.prioIdx] < 0 {
			return 0, "", false
		}
		digits = text[loc[2*s.prioIdx]:loc[2*s.prioIdx+1]]
	}
	n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(digits), "()"))
	if err != nil {
		return 0, "", false
	}
	return model.ClampPriority(n), token, true
}

// Resolve strips the priority token from text and returns the cleaned text
// together with its priority, falling back to the sentinel.
func (s *Set) Resolve(text string) (string, int) {
	prio, token, ok := s.Priority(text)
	if !ok {
		return strings.TrimSpace(text), model.SentinelPriority
	}
	return strings.TrimSpace(strings.Replace(text, token, "", 1)), prio
}
