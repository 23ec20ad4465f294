package reactor

import "fmt"

// PublishMode selects which registry of a key's handlers a Publish call targets.
type PublishMode uint8

const (
	// Multicast delivers to every handler registered on the key, in registration order.
	Multicast PublishMode = iota
	// Unicast delivers only to the single handler occupying the key's unicast slot, if any.
	Unicast
)

func (m PublishMode) String() string {
	if m == Unicast {
		return "Unicast"
	}
	return "Multicast"
}

// PublishResult reports the outcome of a single Publish/PublishUnicast call.
type PublishResult struct {
	Success            bool
	Total              int
	Successful         int
	Failed             int
	PublishedSignature string
	FailedSignatures   []string
	ExpectedSignatures []string
	Mode               PublishMode
	Diagnostic         string
}

// String renders a one-line summary, e.g. "3/3 Multicast (int)".
func (r PublishResult) String() string {
	return fmt.Sprintf("%d/%d %s %s", r.Successful, r.Total, r.Mode, r.PublishedSignature)
}

type eventHandler struct {
	id   Handle
	fn   any
	sig  signature
	once bool
}

// keyRegistry holds the multicast list and unicast slot for one EventBus key.
type keyRegistry struct {
	order   []Handle
	byID    map[Handle]*eventHandler
	unicast *eventHandler
}

func newKeyRegistry() *keyRegistry {
	return &keyRegistry{byID: make(map[Handle]*eventHandler)}
}

func (r *keyRegistry) empty() bool {
	return len(r.byID) == 0 && r.unicast == nil
}

// EventBus is a keyed publish/subscribe router over type-erased, arity- and signature-checked
// handlers (component D). It is not goroutine-safe; see §5.
type EventBus[K comparable] struct {
	cfg      engineConfig
	keys     map[K]*keyRegistry
	byHandle handleIndex[K]
}

// NewEventBus constructs an empty bus.
func NewEventBus[K comparable](opts ...Option) *EventBus[K] {
	return &EventBus[K]{
		cfg:      newEngineConfig("eventbus", opts...),
		keys:     make(map[K]*keyRegistry),
		byHandle: newHandleIndex[K](),
	}
}

// Subscribe registers fn as a multicast handler on key. fn may have any arity and parameter
// types; Publish routes to it only when the published argument signature matches exactly. If
// once is true, the handler is removed automatically after its first successful delivery.
func (b *EventBus[K]) Subscribe(key K, fn any, once bool) Handle {
	reg, ok := b.keys[key]
	if !ok {
		reg = newKeyRegistry()
		b.keys[key] = reg
	}
	h := newHandle(key, KindSubscription)
	eh := &eventHandler{id: h, fn: fn, sig: handlerSignature(fn), once: once}
	reg.byID[h] = eh
	reg.order = append(reg.order, h)
	b.byHandle.register(h, key)
	return h
}

// SubscribeUnicast installs fn as key's sole unicast handler, evicting and forgetting whatever
// previously occupied that slot (including its once-flag) atomically with respect to delivery.
func (b *EventBus[K]) SubscribeUnicast(key K, fn any, once bool) Handle {
	reg, ok := b.keys[key]
	if !ok {
		reg = newKeyRegistry()
		b.keys[key] = reg
	}
	if reg.unicast != nil {
		b.byHandle.forget(reg.unicast.id)
	}
	h := newHandle(key, KindSubscription)
	reg.unicast = &eventHandler{id: h, fn: fn, sig: handlerSignature(fn), once: once}
	b.byHandle.register(h, key)
	return h
}

// Unsubscribe removes the handler identified by h, from whichever slot holds it, reporting
// whether anything was actually removed.
func (b *EventBus[K]) Unsubscribe(h Handle) bool {
	key, ok := b.byHandle.lookup(h)
	if !ok {
		return false
	}
	reg, ok := b.keys[key]
	if !ok {
		b.byHandle.forget(h)
		return false
	}
	if reg.unicast != nil && reg.unicast.id == h {
		reg.unicast = nil
		b.byHandle.forget(h)
		b.pruneIfEmpty(key, reg)
		return true
	}
	if _, exists := reg.byID[h]; exists {
		delete(reg.byID, h)
		for i, id := range reg.order {
			if id == h {
				reg.order = append(reg.order[:i], reg.order[i+1:]...)
				break
			}
		}
		b.byHandle.forget(h)
		b.pruneIfEmpty(key, reg)
		return true
	}
	return false
}

func (b *EventBus[K]) pruneIfEmpty(key K, reg *keyRegistry) {
	if reg.empty() {
		delete(b.keys, key)
	}
}

// Publish delivers args to every multicast handler registered on key, in registration order.
func (b *EventBus[K]) Publish(key K, args ...any) PublishResult {
	return b.publish(key, Multicast, args)
}

// PublishUnicast delivers args to key's unicast handler, if any.
func (b *EventBus[K]) PublishUnicast(key K, args ...any) PublishResult {
	return b.publish(key, Unicast, args)
}

func (b *EventBus[K]) publish(key K, mode PublishMode, args []any) PublishResult {
	sig := signatureOf(args)
	result := PublishResult{Mode: mode, PublishedSignature: sig.String()}

	reg, ok := b.keys[key]
	if !ok {
		result.Diagnostic = "eventbus: no handlers registered for key"
		b.cfg.diagf("%s", result.Diagnostic)
		return result
	}

	var candidates []Handle
	switch mode {
	case Unicast:
		if reg.unicast == nil {
			result.Diagnostic = "eventbus: no unicast handler registered for key"
			b.cfg.diagf("%s", result.Diagnostic)
			return result
		}
		candidates = []Handle{reg.unicast.id}
		result.ExpectedSignatures = []string{reg.unicast.sig.String()}
	default:
		candidates = append(candidates, reg.order...)
		for _, id := range reg.order {
			result.ExpectedSignatures = append(result.ExpectedSignatures, reg.byID[id].sig.String())
		}
	}

	var toRemove []Handle
	for _, id := range candidates {
		eh := b.lookup(reg, mode, id)
		if eh == nil {
			continue
		}
		result.Total++
		if !eh.sig.equal(sig) {
			result.Failed++
			result.FailedSignatures = append(result.FailedSignatures, eh.sig.String())
			continue
		}
		if err := recoverHandler("eventbus", func() { invoke(eh.fn, args) }); err != nil {
			result.Failed++
			result.FailedSignatures = append(result.FailedSignatures, eh.sig.String())
			b.cfg.diagf("eventbus: handler panic: %v", err)
			continue
		}
		result.Successful++
		if eh.once {
			toRemove = append(toRemove, eh.id)
		}
	}
	result.Success = result.Successful > 0

	for _, h := range toRemove {
		b.Unsubscribe(h)
	}
	return result
}

// lookup re-fetches the handler for id just before invocation, honoring the re-entrancy
// contract: a handler unsubscribed by an earlier callback in this same publish is silently
// skipped rather than invoked from a stale snapshot.
func (b *EventBus[K]) lookup(reg *keyRegistry, mode PublishMode, id Handle) *eventHandler {
	if mode == Unicast {
		if reg.unicast != nil && reg.unicast.id == id {
			return reg.unicast
		}
		return nil
	}
	return reg.byID[id]
}

// SubscriberCount reports how many multicast handlers plus (0 or 1) unicast handler are
// currently registered on key.
func (b *EventBus[K]) SubscriberCount(key K) int {
	reg, ok := b.keys[key]
	if !ok {
		return 0
	}
	n := len(reg.byID)
	if reg.unicast != nil {
		n++
	}
	return n
}
