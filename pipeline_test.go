package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionPipelineValidatorRejectionShortCircuits(t *testing.T) {
	pipe := NewActionPipeline[string]()
	flagSet := false

	_, err := pipe.AddValidator("k", func(n int) bool { return n > 0 }, 0, "must be positive")
	require.NoError(t, err)
	_, err = pipe.AddSequentialProcessor("k", func(int) { flagSet = true }, 0, "")
	require.NoError(t, err)
	var completions int
	_, err = pipe.AddCompletionListener("k", func(int) { completions++ }, 0, "")
	require.NoError(t, err)

	result := pipe.Execute("k", -1)

	assert.False(t, flagSet)
	assert.False(t, result.ValidationPassed)
	assert.False(t, result.Success)
	assert.Equal(t, "must be positive", result.RejectionReason)
	assert.Equal(t, 0, result.ExecutedProcessors)
	assert.Equal(t, 0, completions)
}

func TestActionPipelineOverloadModeRoutesByArgType(t *testing.T) {
	pipe := NewActionPipeline[string](WithOverloadMode())

	var gotInt int
	var gotString string
	_, err := pipe.AddSequentialProcessor("K", func(n int) { gotInt = n }, 0, "")
	require.NoError(t, err)
	_, err = pipe.AddSequentialProcessor("K", func(s string) { gotString = s }, 0, "")
	require.NoError(t, err)

	r1 := pipe.Execute("K", 42)
	assert.True(t, r1.Success)
	assert.Equal(t, 42, gotInt)
	assert.Empty(t, gotString)

	r2 := pipe.Execute("K", "hi")
	assert.True(t, r2.Success)
	assert.Equal(t, "hi", gotString)

	r3 := pipe.Execute("K", 3.14)
	assert.False(t, r3.Success)
	assert.Contains(t, r3.ErrorMessage, "no matching parameter types")
}

func TestActionPipelineGlobalCompletionListenerFiresOnUnknownKey(t *testing.T) {
	pipe := NewActionPipeline[string]()
	var sawKey string
	var sawResult ActionResult
	fired := false
	pipe.AddGlobalCompletionListener(func(key string, result ActionResult) {
		fired = true
		sawKey = key
		sawResult = result
	}, "")

	result := pipe.Execute("unregistered")
	assert.False(t, result.Success)
	assert.True(t, fired)
	assert.Equal(t, "unregistered", sawKey)
	assert.False(t, sawResult.Success)
}

func TestActionPipelineTriggerListenersRunEvenOnValidatorFailure(t *testing.T) {
	pipe := NewActionPipeline[string]()
	triggered := false
	_, err := pipe.AddTriggerListener("k", func(int) { triggered = true }, 0, "")
	require.NoError(t, err)
	_, err = pipe.AddValidator("k", func(int) bool { return false }, 0, "always rejects")
	require.NoError(t, err)

	result := pipe.Execute("k", 1)
	assert.True(t, triggered)
	assert.False(t, result.ValidationPassed)
}

func TestActionPipelineSequentialProcessorPanicAbortsBeforeFinalAndCompletion(t *testing.T) {
	pipe := NewActionPipeline[string]()
	var finalRan, completionRan bool

	_, err := pipe.AddSequentialProcessor("k", func(int) { panic("boom") }, 0, "")
	require.NoError(t, err)
	_, err = pipe.SetFinalProcessor("k", func(int) { finalRan = true }, "")
	require.NoError(t, err)
	_, err = pipe.AddCompletionListener("k", func(int) { completionRan = true }, 0, "")
	require.NoError(t, err)

	result := pipe.Execute("k", 1)
	assert.False(t, result.Success)
	assert.False(t, finalRan)
	assert.False(t, completionRan)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestActionPipelineCompletionListenersRunAfterFinalProcessor(t *testing.T) {
	pipe := NewActionPipeline[string]()
	var order []string

	_, err := pipe.AddSequentialProcessor("k", func(int) { order = append(order, "seq") }, 0, "")
	require.NoError(t, err)
	_, err = pipe.SetFinalProcessor("k", func(int) { order = append(order, "final") }, "")
	require.NoError(t, err)
	_, err = pipe.AddCompletionListener("k", func(int) { order = append(order, "completion") }, 0, "")
	require.NoError(t, err)

	result := pipe.Execute("k", 1)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"seq", "final", "completion"}, order)
	assert.Equal(t, 2, result.TotalProcessors)
	assert.Equal(t, 2, result.ExecutedProcessors)
	assert.Equal(t, 1, result.CompletionListenersFired)
}

func TestActionPipelineVoidValidatorAlwaysPasses(t *testing.T) {
	pipe := NewActionPipeline[string]()
	ran := false
	// registered through the generic AddHandler path with a void signature: per §4.E.3 this
	// must be treated as an unconditional pass.
	_, err := pipe.AddHandler("k", KindValidator, func(int) {}, 0, "")
	require.NoError(t, err)
	_, err = pipe.AddSequentialProcessor("k", func(int) { ran = true }, 0, "")
	require.NoError(t, err)

	result := pipe.Execute("k", 1)
	assert.True(t, result.ValidationPassed)
	assert.True(t, ran)
	assert.True(t, result.Success)
}

func TestActionPipelineNonOverloadRejectsConflictingSignature(t *testing.T) {
	pipe := NewActionPipeline[string]()
	_, err := pipe.AddSequentialProcessor("k", func(int) {}, 0, "")
	require.NoError(t, err)

	_, err = pipe.AddSequentialProcessor("k", func(string) {}, 0, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestActionPipelineRemoveHandlerPrunesEmptyOverloadContainer(t *testing.T) {
	pipe := NewActionPipeline[string](WithOverloadMode())
	h, err := pipe.AddSequentialProcessor("k", func(int) {}, 0, "")
	require.NoError(t, err)

	assert.True(t, pipe.RemoveHandler(h))
	assert.False(t, pipe.RemoveHandler(h))

	result := pipe.Execute("k", 1)
	assert.False(t, result.Success)
}

func TestActionPipelineReentrantRemoveHandlerDuringExecuteIsHonored(t *testing.T) {
	pipe := NewActionPipeline[string]()
	var calls []string
	var hLater Handle

	_, err := pipe.AddTriggerListener("k", func(int) {
		calls = append(calls, "first")
		pipe.RemoveHandler(hLater)
	}, 0, "")
	require.NoError(t, err)
	hLater, err = pipe.AddTriggerListener("k", func(int) {
		calls = append(calls, "second")
	}, 1, "")
	require.NoError(t, err)

	pipe.Execute("k", 1)
	assert.Equal(t, []string{"first"}, calls)
}

func TestActionPipelinePrioritySortsAscendingWithInsertionOrderTiebreak(t *testing.T) {
	pipe := NewActionPipeline[string]()
	var order []string
	_, _ = pipe.AddTriggerListener("k", func(int) { order = append(order, "low-priority-second") }, 5, "")
	_, _ = pipe.AddTriggerListener("k", func(int) { order = append(order, "high-priority-first") }, 1, "")
	_, _ = pipe.AddTriggerListener("k", func(int) { order = append(order, "low-priority-tie") }, 5, "")

	pipe.Execute("k", 1)
	assert.Equal(t, []string{"high-priority-first", "low-priority-second", "low-priority-tie"}, order)
}
