package reactor

import "github.com/google/uuid"

// HandleKind tags which registry within an engine a Handle refers to, so that removal routes
// to the right bookkeeping without a type switch on the callback itself.
type HandleKind uint8

const (
	// KindSubscription tags handles issued by EventBus.Subscribe / SubscribeUnicast.
	KindSubscription HandleKind = iota
	// KindTriggerListener tags ActionPipeline.AddTriggerListener registrations.
	KindTriggerListener
	// KindValidator tags ActionPipeline.AddValidator registrations.
	KindValidator
	// KindValidationListener tags ActionPipeline.AddValidationListener registrations.
	KindValidationListener
	// KindSequentialProcessor tags ActionPipeline.AddSequentialProcessor registrations.
	KindSequentialProcessor
	// KindFinalProcessor tags ActionPipeline.SetFinalProcessor registrations.
	KindFinalProcessor
	// KindCompletionListener tags ActionPipeline.AddCompletionListener registrations.
	KindCompletionListener
	// KindStateListener tags StateTree.Subscribe registrations.
	KindStateListener
)

// Handle is the opaque, equality- and hash-comparable token returned by every subscription and
// registration call in this module. The zero Handle (ID == uuid.Nil) is reserved as invalid, per
// spec: an engine never hands one out.
type Handle struct {
	ID   uuid.UUID
	Key  any
	Kind HandleKind
}

// Valid reports whether h was actually issued by an engine, as opposed to being a zero Handle.
func (h Handle) Valid() bool {
	return h.ID != uuid.Nil
}

func newHandle(key any, kind HandleKind) Handle {
	return Handle{ID: uuid.New(), Key: key, Kind: kind}
}

// handleIndex is the handle→key secondary index EventBus uses so that Unsubscribe can locate the
// owning registry in O(1) instead of scanning every key, mirroring the teacher's
// route-lookup-by-handle pattern in router.go. ActionPipeline keeps its own richer index
// (actionLoc) instead.
type handleIndex[K comparable] struct {
	byHandle map[Handle]K
}

func newHandleIndex[K comparable]() handleIndex[K] {
	return handleIndex[K]{byHandle: make(map[Handle]K)}
}

func (x *handleIndex[K]) register(h Handle, key K) {
	x.byHandle[h] = key
}

func (x *handleIndex[K]) lookup(h Handle) (K, bool) {
	k, ok := x.byHandle[h]
	return k, ok
}

func (x *handleIndex[K]) forget(h Handle) {
	delete(x.byHandle, h)
}
