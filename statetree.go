package reactor

import (
	"fmt"
	"iter"

	"github.com/gowiring/reactor/internal/iterutil"
)

// StateTree is a hierarchical, path-addressed store of typed scalar/object values with
// fine-grained change notifications. It is not goroutine-safe (§5): mutation and dispatch share
// one logical flow per instance, and callbacks run synchronously, nested inside the triggering
// call, on the caller's goroutine.
type StateTree struct {
	cfg           engineConfig
	root          *stateNode
	listeners     *pathTrie[EventKind, StateListenerFunc]
	eventsEnabled bool
}

// NewStateTree constructs an empty tree whose root is always an Object, per invariant.
func NewStateTree(opts ...Option) *StateTree {
	return &StateTree{
		cfg:           newEngineConfig("state", opts...),
		root:          newObjectNode(""),
		listeners:     newPathTrie[EventKind, StateListenerFunc](),
		eventsEnabled: true,
	}
}

// EnableEvents re-enables event delivery (the default). It does not re-deliver events missed
// while disabled.
func (t *StateTree) EnableEvents() { t.eventsEnabled = true }

// DisableEvents suppresses event delivery without affecting mutation; writes, removes and moves
// still happen, they simply are not reported to listeners until EnableEvents is called again.
func (t *StateTree) DisableEvents() { t.eventsEnabled = false }

// locate walks to the node at path without creating anything, returning (nil, false) if any
// segment is missing.
func (t *StateTree) locate(segs []string) (*stateNode, bool) {
	n := t.root
	for _, seg := range segs {
		if n.kind != Object {
			return nil, false
		}
		child, ok := n.children[seg]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

// Has reports whether a node exists at path. The empty path (root) always exists.
func (t *StateTree) Has(path string) bool {
	if path == "" {
		return true
	}
	_, ok := t.locate(splitPath(path))
	return ok
}

// TypeOf reports the kind of the node at path, or Empty if no node exists there.
func (t *StateTree) TypeOf(path string) Kind {
	if path == "" {
		return Object
	}
	n, ok := t.locate(splitPath(path))
	if !ok {
		return Empty
	}
	return n.kind
}

// resolveParent walks to the parent implied by segs, auto-creating Object intermediates and
// replacing non-Object intermediates with fresh Objects without returning an error (each
// replacement is reported to the diagnostic sink), per §4.C.2 step 2. It never
// fails: the deepest possible parent is always an Object by construction.
func (t *StateTree) resolveParent(segs []string) *stateNode {
	n := t.root
	built := []string(nil)
	for _, seg := range segs {
		built = append(built, seg)
		child, ok := n.children[seg]
		if !ok || child.kind != Object {
			if ok {
				t.cfg.diagf("state: replacing non-object intermediate at %q", joinPath(built))
			}
			child = newObjectNode(joinPath(built))
			n.addChild(seg, child)
		}
		n = child
	}
	return n
}

// writeAt implements the shared §4.C.2 write procedure for the set* family: mutate in place on
// a kind match, otherwise replace (emitting a type-mismatch diagnostic when something existed),
// emitting Update when a node existed before and Add otherwise.
func (t *StateTree) writeAt(path string, kind Kind, assign func(*stateNode), build func() *stateNode) error {
	if path == "" {
		return fmt.Errorf("reactor: %w: cannot set a leaf at the root", ErrPathInvalid)
	}
	segs := splitPath(path)
	parent := t.resolveParent(segs[:len(segs)-1])
	name, _ := lastSegment(segs)
	existing, exists := parent.children[name]
	switch {
	case exists && existing.kind == kind:
		if assign != nil {
			assign(existing)
		}
		t.emit(Event{Kind: Update, Path: path, Node: snapshot(existing), NodeKind: kind})
	case exists:
		t.cfg.diagf("state: type mismatch at %q: replacing %s with %s", path, existing.kind, kind)
		fresh := build()
		parent.addChild(name, fresh)
		t.emit(Event{Kind: Update, Path: path, Node: snapshot(fresh), NodeKind: kind})
	default:
		fresh := build()
		parent.addChild(name, fresh)
		t.emit(Event{Kind: Add, Path: path, Node: snapshot(fresh), NodeKind: kind})
	}
	return nil
}

// SetInt writes an Int leaf at path, auto-creating intermediates as needed.
func (t *StateTree) SetInt(path string, v int32) error {
	return t.writeAt(path, Int, func(n *stateNode) { n.intVal = v }, func() *stateNode { n := newLeaf(Int); n.intVal = v; return n })
}

// SetFloat writes a Float leaf at path, auto-creating intermediates as needed.
func (t *StateTree) SetFloat(path string, v float32) error {
	return t.writeAt(path, Float, func(n *stateNode) { n.floatVal = v }, func() *stateNode { n := newLeaf(Float); n.floatVal = v; return n })
}

// SetBool writes a Bool leaf at path, auto-creating intermediates as needed.
func (t *StateTree) SetBool(path string, v bool) error {
	return t.writeAt(path, Bool, func(n *stateNode) { n.boolVal = v }, func() *stateNode { n := newLeaf(Bool); n.boolVal = v; return n })
}

// SetPointer writes a Pointer leaf at path. The tree never dereferences or frees v; lifetime is
// the caller's responsibility.
func (t *StateTree) SetPointer(path string, v uintptr) error {
	return t.writeAt(path, Pointer, func(n *stateNode) { n.pointerVal = v }, func() *stateNode { n := newLeaf(Pointer); n.pointerVal = v; return n })
}

// SetString writes a String leaf at path, auto-creating intermediates as needed.
func (t *StateTree) SetString(path string, v string) error {
	return t.writeAt(path, String, func(n *stateNode) { n.stringVal = v }, func() *stateNode { n := newLeaf(String); n.stringVal = v; return n })
}

// SetObject ensures an Object node exists at path, preserving any existing children if one
// already does.
func (t *StateTree) SetObject(path string) error {
	if path == "" {
		return nil
	}
	return t.writeAt(path, Object, nil, func() *stateNode { return newObjectNode(path) })
}

// SetNode splices an externally built Node at path, always replacing whatever was there (unlike
// the set* family, which mutates in place on a kind match). If path is empty, the node is
// simply discarded and ErrPathInvalid is returned.
func (t *StateTree) SetNode(path string, n *Node) error {
	if path == "" {
		return fmt.Errorf("reactor: %w: cannot set a node at the root", ErrPathInvalid)
	}
	if n == nil {
		return fmt.Errorf("reactor: %w: nil node", ErrPathInvalid)
	}
	segs := splitPath(path)
	parent := t.resolveParent(segs[:len(segs)-1])
	name, _ := lastSegment(segs)
	existing, exists := parent.children[name]
	if exists && existing.kind != n.kind {
		t.cfg.diagf("state: type mismatch at %q: replacing %s with %s", path, existing.kind, n.kind)
	}
	fresh := n.toInternal(path)
	parent.addChild(name, fresh)
	if exists {
		t.emit(Event{Kind: Update, Path: path, Node: snapshot(fresh), NodeKind: n.kind})
	} else {
		t.emit(Event{Kind: Add, Path: path, Node: snapshot(fresh), NodeKind: n.kind})
	}
	return nil
}

// TrySetInt overwrites the Int leaf at path only if a node already exists there and is already
// an Int. It never creates a node (neither intermediates nor the leaf itself) and never changes
// kinds.
func (t *StateTree) TrySetInt(path string, v int32) bool {
	return t.tryWrite(path, Int, func(n *stateNode) { n.intVal = v })
}

// TrySetFloat is the strict counterpart to SetFloat; see TrySetInt.
func (t *StateTree) TrySetFloat(path string, v float32) bool {
	return t.tryWrite(path, Float, func(n *stateNode) { n.floatVal = v })
}

// TrySetBool is the strict counterpart to SetBool; see TrySetInt.
func (t *StateTree) TrySetBool(path string, v bool) bool {
	return t.tryWrite(path, Bool, func(n *stateNode) { n.boolVal = v })
}

// TrySetPointer is the strict counterpart to SetPointer; see TrySetInt.
func (t *StateTree) TrySetPointer(path string, v uintptr) bool {
	return t.tryWrite(path, Pointer, func(n *stateNode) { n.pointerVal = v })
}

// TrySetString is the strict counterpart to SetString; see TrySetInt.
func (t *StateTree) TrySetString(path string, v string) bool {
	return t.tryWrite(path, String, func(n *stateNode) { n.stringVal = v })
}

func (t *StateTree) tryWrite(path string, kind Kind, assign func(*stateNode)) bool {
	if path == "" {
		return false
	}
	segs := splitPath(path)
	parent, ok := t.locate(segs[:len(segs)-1])
	if !ok || parent.kind != Object {
		return false
	}
	name, _ := lastSegment(segs)
	existing, exists := parent.children[name]
	if !exists {
		return false
	}
	if existing.kind != kind {
		return false
	}
	assign(existing)
	t.emit(Event{Kind: Update, Path: path, Node: snapshot(existing), NodeKind: kind})
	return true
}

// GetInt returns the Int value at path, and whether path holds an Int node.
func (t *StateTree) GetInt(path string) (int32, bool) {
	n, ok := t.leaf(path, Int)
	if !ok {
		return 0, false
	}
	return n.intVal, true
}

// GetOrInt returns the Int value at path, or def if path does not hold an Int node.
func (t *StateTree) GetOrInt(path string, def int32) int32 {
	if v, ok := t.GetInt(path); ok {
		return v
	}
	return def
}

// GetFloat returns the Float value at path, and whether path holds a Float node.
func (t *StateTree) GetFloat(path string) (float32, bool) {
	n, ok := t.leaf(path, Float)
	if !ok {
		return 0, false
	}
	return n.floatVal, true
}

// GetOrFloat returns the Float value at path, or def if path does not hold a Float node.
func (t *StateTree) GetOrFloat(path string, def float32) float32 {
	if v, ok := t.GetFloat(path); ok {
		return v
	}
	return def
}

// GetBool returns the Bool value at path, and whether path holds a Bool node.
func (t *StateTree) GetBool(path string) (bool, bool) {
	n, ok := t.leaf(path, Bool)
	if !ok {
		return false, false
	}
	return n.boolVal, true
}

// GetOrBool returns the Bool value at path, or def if path does not hold a Bool node.
func (t *StateTree) GetOrBool(path string, def bool) bool {
	if v, ok := t.GetBool(path); ok {
		return v
	}
	return def
}

// GetPointer returns the Pointer value at path, and whether path holds a Pointer node.
func (t *StateTree) GetPointer(path string) (uintptr, bool) {
	n, ok := t.leaf(path, Pointer)
	if !ok {
		return 0, false
	}
	return n.pointerVal, true
}

// GetOrPointer returns the Pointer value at path, or def if path does not hold a Pointer node.
func (t *StateTree) GetOrPointer(path string, def uintptr) uintptr {
	if v, ok := t.GetPointer(path); ok {
		return v
	}
	return def
}

// GetString returns the String value at path, and whether path holds a String node.
func (t *StateTree) GetString(path string) (string, bool) {
	n, ok := t.leaf(path, String)
	if !ok {
		return "", false
	}
	return n.stringVal, true
}

// GetOrString returns the String value at path, or def if path does not hold a String node.
func (t *StateTree) GetOrString(path string, def string) string {
	if v, ok := t.GetString(path); ok {
		return v
	}
	return def
}

func (t *StateTree) leaf(path string, kind Kind) (*stateNode, bool) {
	if path == "" {
		return nil, false
	}
	n, ok := t.locate(splitPath(path))
	if !ok || n.kind != kind {
		return nil, false
	}
	return n, true
}

// Children ranges over the direct children of the Object at path, in insertion order. It yields
// nothing if path does not exist or does not hold an Object.
func (t *StateTree) Children(path string) iter.Seq2[string, Kind] {
	return func(yield func(string, Kind) bool) {
		var n *stateNode
		if path == "" {
			n = t.root
		} else {
			found, ok := t.locate(splitPath(path))
			if !ok || found.kind != Object {
				return
			}
			n = found
		}
		for _, name := range n.order {
			if !yield(name, n.children[name].kind) {
				return
			}
		}
	}
}

// ChildCount reports how many direct children the Object at path has, or 0 if path does not
// exist or does not hold an Object. Built atop Children rather than a direct len(), so the
// range-over-func enumeration path is always exercised identically whether a caller wants the
// children themselves or just their count.
func (t *StateTree) ChildCount(path string) int {
	return iterutil.Len2(t.Children(path))
}

// Remove locates the node at path without creating anything; if found, it emits Remove (with
// the still-live node reference) before destroying the subtree, and returns true. If nothing
// exists at path, it returns false without emitting an event.
func (t *StateTree) Remove(path string) bool {
	if path == "" {
		return false
	}
	segs := splitPath(path)
	parentSegs, _ := parentPath(segs)
	parent, ok := t.locate(parentSegs)
	if !ok || parent.kind != Object {
		return false
	}
	name, _ := lastSegment(segs)
	node, exists := parent.children[name]
	if !exists {
		return false
	}
	t.emit(Event{Kind: Remove, Path: path, Node: snapshot(node), NodeKind: node.kind})
	parent.removeChild(name)
	return true
}

// isPrefixOrEqual reports whether a is a or an ancestor of b (segment-wise).
func isPrefixOrEqual(a, b []string) bool {
	if len(a) > len(b) {
		return false
	}
	for i, s := range a {
		if b[i] != s {
			return false
		}
	}
	return true
}

// Move detaches the subtree at from (if present), locates or auto-creates the parent of to,
// reattaches the subtree under to's last segment, rewrites the absolute paths of any moved
// Object descendants, and emits exactly one Move event (path=from, relatedPath=to). No Add or
// Remove events are emitted for the moved subtree.
//
// If to names a path inside the subtree being moved (including to == from), the move is
// rejected with ErrPathInvalid before anything is detached, so the subtree stays at its
// original location untouched.
func (t *StateTree) Move(from, to string) error {
	if from == "" || to == "" {
		return fmt.Errorf("reactor: %w: move requires non-empty paths", ErrPathInvalid)
	}
	fromSegs := splitPath(from)
	fromParentSegs, _ := parentPath(fromSegs)
	fromParent, ok := t.locate(fromParentSegs)
	if !ok || fromParent.kind != Object {
		return fmt.Errorf("reactor: %w: move source %q not found", ErrPathInvalid, from)
	}
	fromName, _ := lastSegment(fromSegs)
	subtree, exists := fromParent.children[fromName]
	if !exists {
		return fmt.Errorf("reactor: %w: move source %q not found", ErrPathInvalid, from)
	}

	toSegs := splitPath(to)
	if isPrefixOrEqual(fromSegs, toSegs) {
		return fmt.Errorf("reactor: %w: move destination %q is inside source %q", ErrPathInvalid, to, from)
	}

	fromParent.removeChild(fromName)

	toParentSegs, _ := parentPath(toSegs)
	toName, _ := lastSegment(toSegs)
	toParent := t.resolveParent(toParentSegs)

	if subtree.kind == Object {
		subtree.rewritePaths(to)
	}
	toParent.addChild(toName, subtree)

	t.emit(Event{Kind: Move, Path: from, RelatedPath: to, Node: snapshot(subtree), NodeKind: subtree.kind})
	return nil
}

// Subscribe registers cb to fire on events of kind occurring at path, scoped by granularity.
// Returns a Handle that Unsubscribe accepts.
func (t *StateTree) Subscribe(path string, gran Granularity, kind EventKind, cb StateListenerFunc) Handle {
	return t.listeners.insert(path, KindStateListener, splitPath(path), gran, kind, cb)
}

// Unsubscribe removes a previously registered listener, returning false if h is unknown.
func (t *StateTree) Unsubscribe(h Handle) bool {
	return t.listeners.remove(h)
}

// emit delivers e to every matching listener, honoring the re-entrancy contract in §5: listeners
// are looked up by handle just before invocation and silently skipped if removed mid-dispatch by
// an earlier listener in the same delivery.
func (t *StateTree) emit(e Event) {
	if !t.eventsEnabled {
		return
	}
	records := t.listeners.match(splitPath(e.Path), e.Kind)
	for _, r := range records {
		if !t.listeners.has(r.id) {
			continue
		}
		r.payload(e)
	}
}
