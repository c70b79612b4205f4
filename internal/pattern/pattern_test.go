package pattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phyten/todoreview/internal/model"
)

func TestMatchReportsEveryTagOnLine(t *testing.T) {
	set, err := Compile(map[string]string{
		"TODO":  `TODO\S*`,
		"FIXME": `FIXME\S*`,
	}, DefaultPriorityPattern, true)
	require.NoError(t, err)

	hits := set.Match("x := 1 // FIXME(1) then TODO(3)")
	require.Len(t, hits, 2)
	assert.Equal(t, Hit{Tag: "FIXME", Text: "FIXME(1)"}, hits[0])
	assert.Equal(t, Hit{Tag: "TODO", Text: "TODO(3)"}, hits[1])
}

func TestMatchCaseSensitivity(t *testing.T) {
	insensitive, err := Compile(map[string]string{"TODO": DefaultFragment("TODO")}, "", false)
	require.NoError(t, err)
	assert.Len(t, insensitive.Match("// todo: lower"), 1)

	sensitive, err := Compile(map[string]string{"TODO": DefaultFragment("TODO")}, "", true)
	require.NoError(t, err)
	assert.Empty(t, sensitive.Match("// todo: lower"))
}

func TestPriorityExtractionStripsToken(t *testing.T) {
	set, err := Compile(map[string]string{"TODO": `TODO.*`}, DefaultPriorityPattern, false)
	require.NoError(t, err)

	hits := set.Match("// TODO(2): fix this")
	require.Len(t, hits, 1)
	require.Equal(t, "TODO(2): fix this", hits[0].Text)

	text, prio := set.Resolve(hits[0].Text)
	assert.Equal(t, 2, prio)
	assert.Equal(t, "TODO: fix this", text)
}

func TestResolveWithoutTokenUsesSentinel(t *testing.T) {
	set, err := Compile(map[string]string{"TODO": `TODO.*`}, DefaultPriorityPattern, false)
	require.NoError(t, err)

	text, prio := set.Resolve("TODO: later ")
	assert.Equal(t, model.SentinelPriority, prio)
	assert.Equal(t, "TODO: later", text)
}

func TestNamedPriorityGroup(t *testing.T) {
	set, err := Compile(map[string]string{"TODO": `TODO.*`}, `#p(?P<priority>\d+)`, false)
	require.NoError(t, err)

	text, prio := set.Resolve("TODO: unhardcode max priority #p3")
	assert.Equal(t, 3, prio)
	assert.Equal(t, "TODO: unhardcode max priority", text)
}

func TestPriorityIsClampedBelowSentinel(t *testing.T) {
	set, err := Compile(map[string]string{"TODO": `TODO.*`}, `p(\d+)`, false)
	require.NoError(t, err)

	_, prio := set.Resolve("TODO p123456")
	assert.Equal(t, model.SentinelPriority-1, prio)
}

func TestTextGroupNarrowsAndAllowsEmptyCapture(t *testing.T) {
	set, err := Compile(map[string]string{"todo": `TODO[\s]*?:[\s]*(?P<todo>.*)`}, "", false)
	require.NoError(t, err)

	hits := set.Match("# TODO: payload")
	require.Len(t, hits, 1)
	assert.Equal(t, "payload", hits[0].Text)

	hits = set.Match("# TODO:")
	require.Len(t, hits, 1, "an empty capture still counts as a match")
	assert.Equal(t, "", hits[0].Text)
}

func TestEmptyMarkersNeverMatch(t *testing.T) {
	set, err := Compile(nil, DefaultPriorityPattern, false)
	require.NoError(t, err)
	assert.True(t, set.Empty())
	assert.Nil(t, set.Match("TODO anything"))

	blank, err := Compile(map[string]string{"TODO": "  "}, "", false)
	require.NoError(t, err)
	assert.True(t, blank.Empty())
}

func TestMalformedPatternsAreRejected(t *testing.T) {
	_, err := Compile(map[string]string{"TODO": `TODO(`}, "", false)
	require.Error(t, err)
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "TODO", perr.Tag)

	_, err = Compile(map[string]string{"TODO": `TODO`}, `(\d`, false)
	require.Error(t, err)
	require.True(t, errors.As(err, &perr))
	assert.Empty(t, perr.Tag)
}

func TestGroupsInsideFragmentsDoNotShiftTags(t *testing.T) {
	set, err := Compile(map[string]string{
		"A": `(a)(b)x`,
		"B": `y(z)?`,
	}, "", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, set.Tags())

	hits := set.Match("abx y")
	require.Len(t, hits, 2)
	assert.Equal(t, Hit{Tag: "A", Text: "abx"}, hits[0])
	assert.Equal(t, Hit{Tag: "B", Text: "y"}, hits[1])
}
