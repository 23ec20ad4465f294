package reactor

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for the error kinds enumerated by the runtime. None of them escapes an engine
// call as a panic: they are returned directly or folded into a result struct. The one hard
// failure, re-registering a non-overload ActionPipeline key with a conflicting signature, is
// likewise returned as an error, by AddHandler and its wrappers.
var (
	// ErrPathInvalid is returned when an empty path is supplied where a name is required, or
	// when a parent segment could not be resolved (e.g. during Move).
	ErrPathInvalid = errors.New("reactor: invalid path")
	// ErrTypeMismatch is wrapped by TypeMismatchError (TypedValueBag.Get with the wrong type),
	// by ActionPipeline registration when a non-overload key is re-registered with a different
	// parameter signature, and by SignatureMismatchError for a non-overload Execute whose
	// arguments do not match. The strict TrySet family reports a kind mismatch by returning false.
	ErrTypeMismatch = errors.New("reactor: type mismatch")
	// ErrKeyAbsent reports a key with nothing registered under it: TypedValueBag.Get returns it
	// for an absent key, and ActionPipeline.Execute reports it (in ActionResult.ErrorMessage) when
	// the key has no handlers or, in overload mode, no container matches the supplied argument
	// signature. EventBus reports an unhandled key through PublishResult.Diagnostic instead.
	ErrKeyAbsent = errors.New("reactor: key not found")
	// ErrDuplicateKey is returned by TypedValueBag.Register when the key is already registered.
	ErrDuplicateKey = errors.New("reactor: duplicate key")
	// ErrInvalidHandle names the unknown-handle error kind: a handle the engine never issued or
	// has already removed. Unsubscribe and RemoveHandler report such a handle by returning false
	// rather than this error.
	ErrInvalidHandle = errors.New("reactor: invalid handle")
)

// TypeMismatchError carries the registered and requested type names for a TypedValueBag.Get
// failure. StateTree type mismatches go to the diagnostic sink as plain messages, not as this type.
type TypeMismatchError struct {
	Key          any
	RegisteredAs string
	RequestedAs  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("reactor: key %v registered as %s, requested as %s", e.Key, e.RegisteredAs, e.RequestedAs)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

func newBagTypeMismatch(key any, registered, requested reflect.Type) *TypeMismatchError {
	return &TypeMismatchError{Key: key, RegisteredAs: typeName(registered), RequestedAs: typeName(requested)}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// SignatureMismatchError is produced by ActionPipeline.Execute, and reported through
// ActionResult.ErrorMessage, when the supplied argument signature does not match the container
// resolved for the key (non-overload mode), or when no container's (arity, Σ) pair matches
// (overload mode). It unwraps to ErrKeyAbsent in the overload case and to ErrTypeMismatch
// otherwise.
type SignatureMismatchError struct {
	Key       any
	Overload  bool
	Got       string
	Expected  []string
}

func (e *SignatureMismatchError) Error() string {
	if e.Overload {
		return fmt.Sprintf("reactor: no matching parameter types for key %v: got %s, expected one of %v", e.Key, e.Got, e.Expected)
	}
	return fmt.Sprintf("reactor: parameter type mismatch for key %v: got %s, expected %v", e.Key, e.Got, e.Expected)
}

func (e *SignatureMismatchError) Unwrap() error {
	if e.Overload {
		return ErrKeyAbsent
	}
	return ErrTypeMismatch
}

// HandlerException records a callback's panic, captured textually rather than re-thrown. It
// satisfies the error interface so it can be folded into ActionResult.ErrorMessage, combined with
// go.uber.org/multierr, or passed to a diagnostic sink.
type HandlerException struct {
	Stage string
	Cause any
}

func (e *HandlerException) Error() string {
	return fmt.Sprintf("reactor: %s handler panicked: %v", e.Stage, e.Cause)
}

// recoverHandler runs fn, converting a panic into a *HandlerException rather than letting it
// propagate. Used by every stage of EventBus.Publish and ActionPipeline.Execute that the spec
// requires to catch and record rather than abort.
func recoverHandler(stage string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerException{Stage: stage, Cause: r}
		}
	}()
	fn()
	return nil
}
