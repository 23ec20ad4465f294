package reactor

import (
	"fmt"
	"reflect"
)

// bagEntry is the (opaque pointer, type-token, type-name, description) tuple the spec describes
// for TypedValueBag. The bag never dereferences ptr and never owns the pointed-to memory.
type bagEntry struct {
	ptr  any
	typ  reflect.Type
	desc string
}

// TypedValueBag is a key→value store with a runtime type-identity check on retrieval. It is
// intentionally not goroutine-safe, matching the single-threaded contract the rest of the
// runtime is built around (§5); unlike the process-wide intern table, it has no concurrent
// caller by design.
type TypedValueBag[K comparable] struct {
	cfg     engineConfig
	entries map[K]bagEntry
}

// NewTypedValueBag constructs an empty bag. The zero value is not usable; always construct
// through this function so the default diagnostic sink is wired up.
func NewTypedValueBag[K comparable](opts ...Option) *TypedValueBag[K] {
	return &TypedValueBag[K]{
		cfg:     newEngineConfig("bag", opts...),
		entries: make(map[K]bagEntry),
	}
}

// Register stores ptr under key with a type token derived from T. It fails with ErrDuplicateKey
// if key is already registered, or with ErrPathInvalid if ptr is nil.
func Register[T any, K comparable](bag *TypedValueBag[K], key K, ptr *T, desc string) error {
	if ptr == nil {
		return fmt.Errorf("reactor: %w: register requires a non-nil pointer", ErrPathInvalid)
	}
	if _, exists := bag.entries[key]; exists {
		bag.cfg.diagf("register: key %v already registered", key)
		return fmt.Errorf("reactor: %w: key %v", ErrDuplicateKey, key)
	}
	bag.entries[key] = bagEntry{
		ptr:  ptr,
		typ:  reflect.TypeOf(ptr),
		desc: desc,
	}
	return nil
}

// Get retrieves the pointer registered under key, succeeding only when the key is present and
// the stored type-token equals the token for *T. On mismatch it returns a *TypeMismatchError
// naming both the registered and requested type.
func Get[T any, K comparable](bag *TypedValueBag[K], key K) (*T, error) {
	entry, ok := bag.entries[key]
	if !ok {
		return nil, fmt.Errorf("reactor: %w: key %v", ErrKeyAbsent, key)
	}
	want := reflect.TypeOf((*T)(nil))
	if entry.typ != want {
		err := newBagTypeMismatch(key, entry.typ.Elem(), want.Elem())
		bag.cfg.diagf("%s", err.Error())
		return nil, err
	}
	return entry.ptr.(*T), nil
}

// Describe returns the description supplied at Register time, or "" if key is absent.
func (b *TypedValueBag[K]) Describe(key K) string {
	return b.entries[key].desc
}

// Has reports whether key is currently registered.
func (b *TypedValueBag[K]) Has(key K) bool {
	_, ok := b.entries[key]
	return ok
}

// Unregister releases the entry stored under key, if any. The bag never frees the pointed-to
// memory; that remains the caller's responsibility.
func (b *TypedValueBag[K]) Unregister(key K) {
	delete(b.entries, key)
}

// Clear releases every entry in the bag.
func (b *TypedValueBag[K]) Clear() {
	clear(b.entries)
}

// Len returns the number of registered entries.
func (b *TypedValueBag[K]) Len() int {
	return len(b.entries)
}
