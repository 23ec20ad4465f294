package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTreeBoxDrawingShape(t *testing.T) {
	tree := NewStateTree()
	require.NoError(t, tree.SetInt("a/b", 7))
	require.NoError(t, tree.SetString("a/c", "hi"))

	out := renderToString(tree, "a")
	assert.Contains(t, out, `├── "b": [Int: 7]`+"\n")
	assert.Contains(t, out, `└── "c": [String: "hi"]`+"\n")
}

func TestPrintTreeNestedObjectContinuationPrefix(t *testing.T) {
	tree := NewStateTree()
	require.NoError(t, tree.SetBool("a/b/c", true))

	out := renderToString(tree, "a")
	assert.Contains(t, out, `└── "b": [Object: 1 children]`+"\n")
	assert.Contains(t, out, `    └── "c": [Bool: true]`+"\n")
}

func TestPrintTreeMissingPathWritesNothing(t *testing.T) {
	tree := NewStateTree()
	out := renderToString(tree, "nope")
	assert.Empty(t, out)
}
