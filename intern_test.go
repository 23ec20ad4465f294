package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternTableAssignsStableIDs(t *testing.T) {
	table := NewInternTable()

	id1 := table.Intern("hello")
	id2 := table.Intern("world")
	id1Again := table.Intern("hello")

	assert.Equal(t, id1, id1Again)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, table.Len())

	s, ok := table.Lookup(id1)
	assert.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestInternTableLookupUnknownID(t *testing.T) {
	table := NewInternTable()
	_, ok := table.Lookup(99)
	assert.False(t, ok)
}

func TestInternUsesSharedDefaultTable(t *testing.T) {
	id := Intern("reactor-intern-test-key")
	s, ok := InternLookup(id)
	assert.True(t, ok)
	assert.Equal(t, "reactor-intern-test-key", s)
}

func TestEventBusWithInternedKeys(t *testing.T) {
	bus := NewEventBus[int]()
	key := Intern("topic/alpha")
	fired := false
	bus.Subscribe(key, func() { fired = true }, false)

	bus.Publish(key)
	assert.True(t, fired)
}
