package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPathCollapsesRepeatedSlashes(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitPath("a//b"))
	assert.Equal(t, []string{"a", "b"}, splitPath("/a/b/"))
	assert.Nil(t, splitPath(""))
}

func TestJoinPathRoundTrips(t *testing.T) {
	segs := splitPath("a/b/c")
	assert.Equal(t, "a/b/c", joinPath(segs))
}

func TestParentPathAndLastSegment(t *testing.T) {
	segs := splitPath("a/b/c")
	parent, ok := parentPath(segs)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, parent)

	last, ok := lastSegment(segs)
	assert.True(t, ok)
	assert.Equal(t, "c", last)

	_, ok = parentPath(nil)
	assert.False(t, ok)

	_, ok = lastSegment(nil)
	assert.False(t, ok)
}
