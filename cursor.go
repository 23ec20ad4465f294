package reactor

// Cursor is a path accessor bound to a StateTree: it composes segments incrementally and
// offers the same read/write vocabulary as the tree itself, scoped to the composed path, so
// callers can build up a location once and reuse it instead of re-joining path strings.
//
//	c := tree.Cursor().Child("players").Child("42").Child("health")
//	c.SetInt(100)
//	hp, ok := c.GetInt()
type Cursor struct {
	tree *StateTree
	segs []string
}

// Cursor returns a new Cursor rooted at path ("" for the tree root).
func (t *StateTree) Cursor(path ...string) *Cursor {
	var segs []string
	if len(path) > 0 && path[0] != "" {
		segs = splitPath(path[0])
	}
	return &Cursor{tree: t, segs: segs}
}

// Child returns a new Cursor composed by appending seg to the receiver's path. The receiver is
// left unmodified, so a cursor can be branched and reused as a prefix for several children.
func (c *Cursor) Child(seg string) *Cursor {
	next := make([]string, len(c.segs), len(c.segs)+1)
	copy(next, c.segs)
	next = append(next, seg)
	return &Cursor{tree: c.tree, segs: next}
}

// Path returns the cursor's composed absolute path string.
func (c *Cursor) Path() string { return joinPath(c.segs) }

// Has reports whether a node exists at the cursor's path.
func (c *Cursor) Has() bool { return c.tree.Has(c.Path()) }

// TypeOf reports the kind of the node at the cursor's path.
func (c *Cursor) TypeOf() Kind { return c.tree.TypeOf(c.Path()) }

// SetInt writes an Int leaf at the cursor's path.
func (c *Cursor) SetInt(v int32) error { return c.tree.SetInt(c.Path(), v) }

// SetFloat writes a Float leaf at the cursor's path.
func (c *Cursor) SetFloat(v float32) error { return c.tree.SetFloat(c.Path(), v) }

// SetBool writes a Bool leaf at the cursor's path.
func (c *Cursor) SetBool(v bool) error { return c.tree.SetBool(c.Path(), v) }

// SetPointer writes a Pointer leaf at the cursor's path.
func (c *Cursor) SetPointer(v uintptr) error { return c.tree.SetPointer(c.Path(), v) }

// SetString writes a String leaf at the cursor's path.
func (c *Cursor) SetString(v string) error { return c.tree.SetString(c.Path(), v) }

// SetObject ensures an Object node exists at the cursor's path.
func (c *Cursor) SetObject() error { return c.tree.SetObject(c.Path()) }

// SetNode splices n at the cursor's path.
func (c *Cursor) SetNode(n *Node) error { return c.tree.SetNode(c.Path(), n) }

// GetInt returns the Int value at the cursor's path.
func (c *Cursor) GetInt() (int32, bool) { return c.tree.GetInt(c.Path()) }

// GetOrInt returns the Int value at the cursor's path, or def.
func (c *Cursor) GetOrInt(def int32) int32 { return c.tree.GetOrInt(c.Path(), def) }

// GetFloat returns the Float value at the cursor's path.
func (c *Cursor) GetFloat() (float32, bool) { return c.tree.GetFloat(c.Path()) }

// GetOrFloat returns the Float value at the cursor's path, or def.
func (c *Cursor) GetOrFloat(def float32) float32 { return c.tree.GetOrFloat(c.Path(), def) }

// GetBool returns the Bool value at the cursor's path.
func (c *Cursor) GetBool() (bool, bool) { return c.tree.GetBool(c.Path()) }

// GetOrBool returns the Bool value at the cursor's path, or def.
func (c *Cursor) GetOrBool(def bool) bool { return c.tree.GetOrBool(c.Path(), def) }

// GetPointer returns the Pointer value at the cursor's path.
func (c *Cursor) GetPointer() (uintptr, bool) { return c.tree.GetPointer(c.Path()) }

// GetOrPointer returns the Pointer value at the cursor's path, or def.
func (c *Cursor) GetOrPointer(def uintptr) uintptr { return c.tree.GetOrPointer(c.Path(), def) }

// GetString returns the String value at the cursor's path.
func (c *Cursor) GetString() (string, bool) { return c.tree.GetString(c.Path()) }

// GetOrString returns the String value at the cursor's path, or def.
func (c *Cursor) GetOrString(def string) string { return c.tree.GetOrString(c.Path(), def) }

// Remove deletes the node at the cursor's path.
func (c *Cursor) Remove() bool { return c.tree.Remove(c.Path()) }

// MoveTo moves the subtree at the cursor's path to dst's path, returning StateTree.Move's error
// if the move fails. Neither cursor is modified.
func (c *Cursor) MoveTo(dst *Cursor) error { return c.tree.Move(c.Path(), dst.Path()) }

// Subscribe registers cb to fire on events of kind at the cursor's path, scoped by gran.
func (c *Cursor) Subscribe(gran Granularity, kind EventKind, cb StateListenerFunc) Handle {
	return c.tree.Subscribe(c.Path(), gran, kind, cb)
}
