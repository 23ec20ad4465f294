package reactor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedValueBagRegisterAndGet(t *testing.T) {
	bag := NewTypedValueBag[string]()
	v := 42

	require.NoError(t, Register(bag, "answer", &v, "the answer"))
	assert.True(t, bag.Has("answer"))
	assert.Equal(t, "the answer", bag.Describe("answer"))

	got, err := Get[int](bag, "answer")
	require.NoError(t, err)
	assert.Equal(t, &v, got)
	assert.Equal(t, 42, *got)
}

func TestTypedValueBagDuplicateRegister(t *testing.T) {
	bag := NewTypedValueBag[string]()
	v1, v2 := 1, 2

	require.NoError(t, Register(bag, "k", &v1, ""))
	err := Register(bag, "k", &v2, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestTypedValueBagNilPointerRejected(t *testing.T) {
	bag := NewTypedValueBag[string]()
	err := Register[int](bag, "k", nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathInvalid)
}

func TestTypedValueBagGetTypeMismatch(t *testing.T) {
	bag := NewTypedValueBag[string]()
	v := "hello"
	require.NoError(t, Register(bag, "k", &v, ""))

	_, err := Get[int](bag, "k")
	require.Error(t, err)

	var mismatch *TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "string", mismatch.RegisteredAs)
	assert.Equal(t, "int", mismatch.RequestedAs)
}

func TestTypedValueBagGetAbsentKey(t *testing.T) {
	bag := NewTypedValueBag[string]()
	_, err := Get[int](bag, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyAbsent)
}

func TestTypedValueBagUnregisterAndClear(t *testing.T) {
	bag := NewTypedValueBag[string]()
	a, b := 1, 2
	require.NoError(t, Register(bag, "a", &a, ""))
	require.NoError(t, Register(bag, "b", &b, ""))
	assert.Equal(t, 2, bag.Len())

	bag.Unregister("a")
	assert.False(t, bag.Has("a"))
	assert.Equal(t, 1, bag.Len())

	bag.Clear()
	assert.Equal(t, 0, bag.Len())
	assert.False(t, bag.Has("b"))
}

func TestTypedValueBagDiagnosticSinkCalledOnMismatch(t *testing.T) {
	var messages []string
	bag := NewTypedValueBag[string](WithDiagnosticSink(func(msg string) {
		messages = append(messages, msg)
	}))
	v := 1
	require.NoError(t, Register(bag, "k", &v, ""))

	_, err := Get[string](bag, "k")
	require.Error(t, err)
	require.Len(t, messages, 1)
}
