package reactor

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// handlerRecord is one registered callback within an ActionPipeline container: an identity, a
// human description (used as the rejection reason when it is a validator), an ascending-sort
// priority, and the type-erased function itself.
type handlerRecord struct {
	id          Handle
	description string
	priority    int
	fn          any
}

// actionContainer holds the six ordered handler sets for one (key, signature) pair.
type actionContainer struct {
	sig                  signature
	triggerListeners     []*handlerRecord
	validators           []*handlerRecord
	validationListeners  []*handlerRecord
	sequentialProcessors []*handlerRecord
	finalProcessor       *handlerRecord
	completionListeners  []*handlerRecord
}

func newActionContainer(sig signature) *actionContainer {
	return &actionContainer{sig: sig}
}

func (c *actionContainer) totalHandlers() int {
	n := len(c.triggerListeners) + len(c.validators) + len(c.validationListeners) + len(c.sequentialProcessors) + len(c.completionListeners)
	if c.finalProcessor != nil {
		n++
	}
	return n
}

// actionLoc is the byHandle index entry: enough to find and remove a handler without rescanning
// every key.
type actionLoc[K comparable] struct {
	key       K
	container *actionContainer
	stage     HandleKind
}

// ActionResult reports the outcome of a single Execute call (component E, §4.E.2).
type ActionResult struct {
	Success                  bool
	ValidationPassed         bool
	RejectionReason          string
	TotalProcessors          int
	ExecutedProcessors       int
	CompletionListenersFired int
	ErrorMessage             string
	Signature                string
}

// String renders a one-line summary for logging.
func (r ActionResult) String() string {
	return fmt.Sprintf("success=%t validationPassed=%t processors=%d/%d sig=%s",
		r.Success, r.ValidationPassed, r.ExecutedProcessors, r.TotalProcessors, r.Signature)
}

// ActionPipeline is a keyed, staged execution pipeline (component E): trigger listeners,
// validators, validation listeners, sequential processors, a single final processor, and
// completion listeners, run in that fixed order with the abort semantics in §4.E.2. It is not
// goroutine-safe; see §5.
type ActionPipeline[K comparable] struct {
	cfg                       engineConfig
	containers                map[K][]*actionContainer
	byHandle                  map[Handle]actionLoc[K]
	globalCompletionListeners []*handlerRecord
}

// NewActionPipeline constructs an empty pipeline. WithOverloadMode enables per-key registration
// of multiple handler-containers distinguished by arity and signature; otherwise each key is
// bound to exactly one signature for its lifetime.
//
// byHandle deliberately stores the richer actionLoc (container pointer, not just key) rather
// than reusing handleIndex: RemoveHandler needs the container directly to splice the right
// stage slice without a second map lookup into containers[key].
func NewActionPipeline[K comparable](opts ...Option) *ActionPipeline[K] {
	return &ActionPipeline[K]{
		cfg:        newEngineConfig("pipeline", opts...),
		containers: make(map[K][]*actionContainer),
		byHandle:   make(map[Handle]actionLoc[K]),
	}
}

// resolveContainer finds the container matching sig for key. In overload mode, a miss returns
// ErrKeyAbsent when create is false, or appends a fresh container when create is true. In
// non-overload mode, a pre-existing container with a different signature is a hard failure.
func (p *ActionPipeline[K]) resolveContainer(key K, sig signature, create bool) (*actionContainer, error) {
	list := p.containers[key]

	if p.cfg.overload {
		for _, c := range list {
			if c.sig.equal(sig) {
				return c, nil
			}
		}
		if !create {
			expected := make([]string, len(list))
			for i, c := range list {
				expected[i] = c.sig.String()
			}
			return nil, &SignatureMismatchError{Key: key, Overload: true, Got: sig.String(), Expected: expected}
		}
		c := newActionContainer(sig)
		p.containers[key] = append(list, c)
		return c, nil
	}

	if len(list) == 0 {
		if !create {
			return nil, fmt.Errorf("reactor: %w: no handlers registered for key", ErrKeyAbsent)
		}
		c := newActionContainer(sig)
		p.containers[key] = []*actionContainer{c}
		return c, nil
	}

	c := list[0]
	if !c.sig.equal(sig) {
		if create {
			return nil, fmt.Errorf("reactor: %w: handler signature %s conflicts with existing %s", ErrTypeMismatch, sig, c.sig)
		}
		return nil, &SignatureMismatchError{Key: key, Overload: false, Got: sig.String(), Expected: []string{c.sig.String()}}
	}
	return c, nil
}

// AddHandler is the generic registration path for any of the six stages. fn may have a void
// signature even for the Validator stage: invoke() treats a non-bool-returning function as an
// unconditional pass, per §4.E.3 — only a handler that actually returns bool can reject.
func (p *ActionPipeline[K]) AddHandler(key K, stage HandleKind, fn any, priority int, description string) (Handle, error) {
	sig := handlerSignature(fn)
	container, err := p.resolveContainer(key, sig, true)
	if err != nil {
		return Handle{}, err
	}
	h := newHandle(key, stage)
	rec := &handlerRecord{id: h, description: description, priority: priority, fn: fn}

	switch stage {
	case KindTriggerListener:
		container.triggerListeners = append(container.triggerListeners, rec)
	case KindValidator:
		container.validators = append(container.validators, rec)
	case KindValidationListener:
		container.validationListeners = append(container.validationListeners, rec)
	case KindSequentialProcessor:
		container.sequentialProcessors = append(container.sequentialProcessors, rec)
	case KindFinalProcessor:
		if container.finalProcessor != nil {
			p.cfg.diagf("pipeline: replacing existing final processor for key")
			delete(p.byHandle, container.finalProcessor.id)
		}
		container.finalProcessor = rec
	case KindCompletionListener:
		container.completionListeners = append(container.completionListeners, rec)
	default:
		return Handle{}, fmt.Errorf("reactor: unsupported pipeline stage %v", stage)
	}

	p.byHandle[h] = actionLoc[K]{key: key, container: container, stage: stage}
	return h, nil
}

// AddTriggerListener registers fn to run, unconditionally, at the start of Execute.
func (p *ActionPipeline[K]) AddTriggerListener(key K, fn any, priority int, description string) (Handle, error) {
	return p.AddHandler(key, KindTriggerListener, fn, priority, description)
}

// AddValidator registers fn as a validator; the first one (in priority order) to return false
// aborts the pipeline before any processor runs.
func (p *ActionPipeline[K]) AddValidator(key K, fn any, priority int, description string) (Handle, error) {
	return p.AddHandler(key, KindValidator, fn, priority, description)
}

// AddValidationListener registers fn to run only once every validator has passed.
func (p *ActionPipeline[K]) AddValidationListener(key K, fn any, priority int, description string) (Handle, error) {
	return p.AddHandler(key, KindValidationListener, fn, priority, description)
}

// AddSequentialProcessor registers fn as a processor; a panic aborts the pipeline before later
// processors, the final processor, or completion listeners run.
func (p *ActionPipeline[K]) AddSequentialProcessor(key K, fn any, priority int, description string) (Handle, error) {
	return p.AddHandler(key, KindSequentialProcessor, fn, priority, description)
}

// SetFinalProcessor registers fn as the container's single final processor, replacing any
// previous one.
func (p *ActionPipeline[K]) SetFinalProcessor(key K, fn any, description string) (Handle, error) {
	return p.AddHandler(key, KindFinalProcessor, fn, 0, description)
}

// AddCompletionListener registers fn to run after the final processor (or after the sequential
// processors, if there is none). It does not run when a validator rejects the call or when a
// sequential or final processor panics.
func (p *ActionPipeline[K]) AddCompletionListener(key K, fn any, priority int, description string) (Handle, error) {
	return p.AddHandler(key, KindCompletionListener, fn, priority, description)
}

// AddGlobalCompletionListener registers fn to run after every Execute call, on any key,
// regardless of outcome. Panics inside fn are isolated: logged to the diagnostic sink, never
// propagated, never affecting the ActionResult.
func (p *ActionPipeline[K]) AddGlobalCompletionListener(fn func(K, ActionResult), description string) Handle {
	h := newHandle(nil, KindCompletionListener)
	p.globalCompletionListeners = append(p.globalCompletionListeners, &handlerRecord{id: h, description: description, fn: fn})
	return h
}

// RemoveHandler removes the handler identified by h from its stage, wherever it is, returning
// false if h is unknown. In overload mode, a container whose handler count drops to zero is
// pruned from the registry.
func (p *ActionPipeline[K]) RemoveHandler(h Handle) bool {
	if removeGlobal(p, h) {
		return true
	}
	loc, ok := p.byHandle[h]
	if !ok {
		return false
	}
	delete(p.byHandle, h)
	c := loc.container
	switch loc.stage {
	case KindTriggerListener:
		c.triggerListeners = removeByID(c.triggerListeners, h)
	case KindValidator:
		c.validators = removeByID(c.validators, h)
	case KindValidationListener:
		c.validationListeners = removeByID(c.validationListeners, h)
	case KindSequentialProcessor:
		c.sequentialProcessors = removeByID(c.sequentialProcessors, h)
	case KindFinalProcessor:
		if c.finalProcessor != nil && c.finalProcessor.id == h {
			c.finalProcessor = nil
		}
	case KindCompletionListener:
		c.completionListeners = removeByID(c.completionListeners, h)
	}
	if p.cfg.overload && c.totalHandlers() == 0 {
		list := p.containers[loc.key]
		for i, other := range list {
			if other == c {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(p.containers, loc.key)
		} else {
			p.containers[loc.key] = list
		}
	}
	return true
}

func removeGlobal[K comparable](p *ActionPipeline[K], h Handle) bool {
	for i, rec := range p.globalCompletionListeners {
		if rec.id == h {
			p.globalCompletionListeners = append(p.globalCompletionListeners[:i], p.globalCompletionListeners[i+1:]...)
			return true
		}
	}
	return false
}

func removeByID(recs []*handlerRecord, h Handle) []*handlerRecord {
	for i, r := range recs {
		if r.id == h {
			return append(recs[:i], recs[i+1:]...)
		}
	}
	return recs
}

func sortedByPriority(recs []*handlerRecord) []*handlerRecord {
	out := make([]*handlerRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].priority < out[j].priority })
	return out
}

// live reports whether h still identifies a registered handler, used to honor the re-entrancy
// contract in §5: Execute iterates a priority-sorted snapshot of each stage taken at the start
// of that stage, then re-checks this just before invoking each record, silently skipping one
// removed by an earlier handler in the same Execute call.
func (p *ActionPipeline[K]) live(h Handle) bool {
	_, ok := p.byHandle[h]
	return ok
}

// Execute runs key's container against args through the six fixed stages described in §4.E.2,
// then invokes every global completion listener with (key, result) regardless of outcome.
func (p *ActionPipeline[K]) Execute(key K, args ...any) ActionResult {
	sig := signatureOf(args)
	container, err := p.resolveContainer(key, sig, false)
	if err != nil {
		result := ActionResult{Signature: sig.String(), ErrorMessage: err.Error()}
		p.fireGlobalCompletionListeners(key, result)
		return result
	}

	result := ActionResult{Signature: sig.String(), ValidationPassed: true}
	var errs error

	for _, h := range sortedByPriority(container.triggerListeners) {
		if !p.live(h.id) {
			continue
		}
		if err := recoverHandler("triggerListener", func() { invoke(h.fn, args) }); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	for _, h := range sortedByPriority(container.validators) {
		if !p.live(h.id) {
			continue
		}
		passed := true
		if err := recoverHandler("validator", func() {
			r, _ := invoke(h.fn, args)
			passed = r
		}); err != nil {
			errs = multierr.Append(errs, err)
			passed = false
		}
		if !passed {
			result.ValidationPassed = false
			result.RejectionReason = h.description
			result.Success = false
			if errs != nil {
				result.ErrorMessage = errs.Error()
			}
			p.fireGlobalCompletionListeners(key, result)
			return result
		}
	}

	for _, h := range sortedByPriority(container.validationListeners) {
		if !p.live(h.id) {
			continue
		}
		if err := recoverHandler("validationListener", func() { invoke(h.fn, args) }); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	result.TotalProcessors = len(container.sequentialProcessors)
	if container.finalProcessor != nil {
		result.TotalProcessors++
	}

	for _, h := range sortedByPriority(container.sequentialProcessors) {
		if !p.live(h.id) {
			continue
		}
		if err := recoverHandler("sequentialProcessor", func() { invoke(h.fn, args) }); err != nil {
			errs = multierr.Append(errs, err)
			result.Success = false
			result.ErrorMessage = errs.Error()
			p.fireGlobalCompletionListeners(key, result)
			return result
		}
		result.ExecutedProcessors++
	}

	// finalProcessor is a single slot read directly off container, not a pre-sorted snapshot
	// slice, so this check already re-resolves liveness at call time: a sequential processor
	// above that called RemoveHandler on it is honored without any extra bookkeeping.
	if container.finalProcessor != nil {
		if err := recoverHandler("finalProcessor", func() { invoke(container.finalProcessor.fn, args) }); err != nil {
			errs = multierr.Append(errs, err)
			result.Success = false
			result.ErrorMessage = errs.Error()
			p.fireGlobalCompletionListeners(key, result)
			return result
		}
		result.ExecutedProcessors++
	}

	for _, h := range sortedByPriority(container.completionListeners) {
		if !p.live(h.id) {
			continue
		}
		if err := recoverHandler("completionListener", func() { invoke(h.fn, args) }); err != nil {
			errs = multierr.Append(errs, err)
		}
		result.CompletionListenersFired++
	}

	result.Success = true
	if errs != nil {
		result.ErrorMessage = errs.Error()
	}
	p.fireGlobalCompletionListeners(key, result)
	return result
}

// fireGlobalCompletionListeners invokes every registered global listener with (key, result).
// Panics are caught, logged to the diagnostic sink, and otherwise ignored — global listeners
// can never affect the result they are observing.
func (p *ActionPipeline[K]) fireGlobalCompletionListeners(key K, result ActionResult) {
	for _, rec := range sortedByPriority(p.globalCompletionListeners) {
		fn := rec.fn.(func(K, ActionResult))
		if err := recoverHandler("globalCompletionListener", func() { fn(key, result) }); err != nil {
			p.cfg.diagf("pipeline: global completion listener panic: %v", err)
		}
	}
}
