package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorChainedSetAndGet(t *testing.T) {
	tree := NewStateTree()
	c := tree.Cursor().Child("players").Child("42").Child("health")

	require.NoError(t, c.SetInt(100))
	assert.Equal(t, "players/42/health", c.Path())

	v, ok := c.GetInt()
	require.True(t, ok)
	assert.EqualValues(t, 100, v)
}

func TestCursorChildIsIndependentOfParent(t *testing.T) {
	tree := NewStateTree()
	base := tree.Cursor().Child("players").Child("42")
	a := base.Child("health")
	b := base.Child("mana")

	require.NoError(t, a.SetInt(10))
	require.NoError(t, b.SetInt(20))

	av, _ := a.GetInt()
	bv, _ := b.GetInt()
	assert.EqualValues(t, 10, av)
	assert.EqualValues(t, 20, bv)
	assert.Equal(t, "players/42", base.Path())
}

func TestCursorSubscribeFiresThroughTree(t *testing.T) {
	tree := NewStateTree()
	c := tree.Cursor("a/b")
	fired := false
	c.Subscribe(ExactNode, Add, func(Event) { fired = true })

	require.NoError(t, tree.SetInt("a/b", 1))
	assert.True(t, fired)
}
