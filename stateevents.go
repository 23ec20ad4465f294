package reactor

// EventKind enumerates the four kinds of StateTree mutation a listener can subscribe to.
type EventKind uint8

const (
	// Add fires when a node is created where none existed before.
	Add EventKind = iota
	// Remove fires once per successful StateTree.Remove call, at the removed path, before the
	// subtree is destroyed. Descendants of the removed node get no events of their own.
	Remove
	// Move fires exactly once per StateTree.Move call, carrying both Path and RelatedPath.
	Move
	// Update fires when an existing node's value is mutated in place or replaced by a write of
	// a different kind.
	Update
)

func (k EventKind) String() string {
	switch k {
	case Add:
		return "Add"
	case Remove:
		return "Remove"
	case Move:
		return "Move"
	case Update:
		return "Update"
	default:
		return "Unknown"
	}
}

// Event is the record delivered to StateTree listeners: the kind of mutation, the path it
// occurred at, the related path (only meaningful for Move), a snapshot of the node involved,
// and that node's kind. Remove of a missing path emits no event, so Node is never nil in an
// event the tree delivers.
type Event struct {
	Kind        EventKind
	Path        string
	RelatedPath string
	Node        *StateValue
	NodeKind    Kind
}

// StateValue is a read-only snapshot view of a stateNode handed to event listeners, so
// listeners can observe a node's kind and scalar value without reaching into StateTree
// internals or risking a dangling pointer into a destroyed node.
type StateValue struct {
	kind Kind
	i    int32
	f    float32
	b    bool
	p    uintptr
	s    string
	n    int // child count, for Object
}

// Kind returns the snapshot's value kind.
func (v *StateValue) Kind() Kind { return v.kind }

// Int returns the snapshotted int value (zero if Kind() != Int).
func (v *StateValue) Int() int32 { return v.i }

// Float returns the snapshotted float value (zero if Kind() != Float).
func (v *StateValue) Float() float32 { return v.f }

// Bool returns the snapshotted bool value (false if Kind() != Bool).
func (v *StateValue) Bool() bool { return v.b }

// PointerValue returns the snapshotted opaque pointer value (zero if Kind() != Pointer).
func (v *StateValue) PointerValue() uintptr { return v.p }

// Str returns the snapshotted string value ("" if Kind() != String).
func (v *StateValue) Str() string { return v.s }

// ChildCount returns the snapshotted child count (0 if Kind() != Object).
func (v *StateValue) ChildCount() int { return v.n }

func snapshot(n *stateNode) *StateValue {
	if n == nil {
		return nil
	}
	v := &StateValue{kind: n.kind}
	switch n.kind {
	case Int:
		v.i = n.intVal
	case Float:
		v.f = n.floatVal
	case Bool:
		v.b = n.boolVal
	case Pointer:
		v.p = n.pointerVal
	case String:
		v.s = n.stringVal
	case Object:
		v.n = len(n.order)
	}
	return v
}

// StateListenerFunc is the callback type invoked on a matching StateTree mutation.
type StateListenerFunc func(Event)
