package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureOfAndEqual(t *testing.T) {
	a := signatureOf([]any{1, "x"})
	b := signatureOf([]any{2, "y"})
	c := signatureOf([]any{1})

	assert.True(t, a.equal(b))
	assert.False(t, a.equal(c))
	assert.Equal(t, 2, a.arity())
	assert.Equal(t, "(int, string)", a.String())
}

func TestSignatureOfNilArgument(t *testing.T) {
	a := signatureOf([]any{nil})
	b := signatureOf([]any{nil})
	c := signatureOf([]any{"x"})

	assert.True(t, a.equal(b))
	assert.False(t, a.equal(c))
}

func TestHandlerSignatureMatchesCallSite(t *testing.T) {
	fn := func(n int, s string) {}
	sig := handlerSignature(fn)
	assert.Equal(t, 2, sig.arity())
	assert.True(t, sig.equal(signatureOf([]any{1, "x"})))
}

func TestHandlerSignaturePanicsOnNonFunc(t *testing.T) {
	assert.Panics(t, func() { handlerSignature(42) })
}

func TestInvokeReturnsBoolResultWhenPresent(t *testing.T) {
	validator := func(n int) bool { return n > 0 }
	result, hasResult := invoke(validator, []any{5})
	assert.True(t, hasResult)
	assert.True(t, result)

	result, hasResult = invoke(validator, []any{-5})
	assert.True(t, hasResult)
	assert.False(t, result)
}

func TestInvokeDefaultsTrueForVoidHandlers(t *testing.T) {
	called := false
	void := func(n int) { called = true }
	result, hasResult := invoke(void, []any{1})
	assert.False(t, hasResult)
	assert.True(t, result)
	assert.True(t, called)
}

func TestArgTypesMatchAllowsNilForReferenceKinds(t *testing.T) {
	fn := func(p *int) {}
	assert.True(t, argTypesMatch(fn, []any{nil}))

	fn2 := func(n int) {}
	assert.False(t, argTypesMatch(fn2, []any{nil}))
}
