package reactor

import (
	"reflect"
	"strings"
)

// signature is the canonical, totally-ordered representation of a payload tuple's types (Σ in
// the spec). Two signatures compare equal iff their argument types match pairwise — the only
// requirement the spec places on Σ. Built via reflection of type identity, the approach the
// design notes list as preferred over a registered integer tag or a type-name hash.
type signature struct {
	types []reflect.Type
}

// arity returns the number of arguments in the signature.
func (s signature) arity() int {
	return len(s.types)
}

// String renders the canonical Σ string used in diagnostics and ActionResult/PublishResult
// fields, e.g. "(int, string)".
func (s signature) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, t := range s.types {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(typeName(t))
	}
	sb.WriteByte(')')
	return sb.String()
}

// equal reports whether two signatures match pairwise, type by type.
func (s signature) equal(other signature) bool {
	if len(s.types) != len(other.types) {
		return false
	}
	for i, t := range s.types {
		if t != other.types[i] {
			return false
		}
	}
	return true
}

// signatureOf computes the canonical Σ for a tuple of boxed argument values, as a publisher's
// call to Publish or Execute would supply them. A nil argument carries no static type and is
// recorded as a nil reflect.Type, matching pairwise only against another nil argument at the
// same position.
func signatureOf(args []any) signature {
	types := make([]reflect.Type, len(args))
	for i, a := range args {
		if a != nil {
			types[i] = reflect.TypeOf(a)
		}
	}
	return signature{types: types}
}

// handlerSignature introspects a registered callback (any func value) and returns the
// signature of its parameter list, so it can be compared against a caller's signatureOf at
// dispatch time. fn must be a func value; handlerSignature panics otherwise, mirroring the
// teacher's convention of panicking on programmer error rather than threading an error through
// every registration call.
func handlerSignature(fn any) signature {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		panic("reactor: handler must be a function")
	}
	types := make([]reflect.Type, t.NumIn())
	for i := range types {
		types[i] = t.In(i)
	}
	return signature{types: types}
}

// invoke calls fn (a func value of arbitrary arity) with args boxed as reflect.Value, perfect-
// forwarding each argument into its declared parameter type. Returns the function's bool return
// value if it has one (validators), or true otherwise (void handlers, per the validator
// adaptation rule in §4.E.3).
func invoke(fn any, args []any) (result bool, hasResult bool) {
	v := reflect.ValueOf(fn)
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.Zero(v.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(a)
	}
	out := v.Call(in)
	if len(out) == 1 && out[0].Kind() == reflect.Bool {
		return out[0].Bool(), true
	}
	return true, false
}

// argTypesMatch reports whether fn accepts arguments of exactly the types in args, allowing an
// untyped nil to satisfy any non-basic (pointer/interface/slice/map/chan/func) parameter kind —
// the same latitude a direct Go call site would have.
func argTypesMatch(fn any, args []any) bool {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, a := range args {
		if a == nil {
			switch t.In(i).Kind() {
			case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
				continue
			default:
				return false
			}
		}
		if reflect.TypeOf(a) != t.In(i) {
			return false
		}
	}
	return true
}
