// Package core provides supporting value-level capabilities shared by the
// systems package: the qualified-type registry that lets user data travel
// through ports, and the wall-clock event timer used to profile node
// handlers.
package core

import (
	"fmt"
	"sort"
)

// Stringer is satisfied by any value that can render itself for the
// print-on-use port tracing described in the kernel's external interface.
type Stringer interface {
	String() string
}

// DeepCopier is satisfied by any value responsible for its own deep copy.
// Values that are already immutable (or copied by value under normal Go
// assignment) don't need to implement it; Copy falls back to returning the
// value unchanged.
type DeepCopier interface {
	DeepCopy() any
}

// Comparer is satisfied by values usable as a collection's agent-id key:
// ids must be totally ordered so a collection can keep them in a
// deterministic iteration order.
type Comparer interface {
	CompareTo(other any) int
}

// QualifiedType describes the capabilities a port-carried Go type has been
// registered with. A type need not implement Stringer/DeepCopier/Comparer
// itself — Register lets a caller supply standalone functions for types it
// doesn't own (e.g. a third-party array type used as an opaque port value).
type QualifiedType struct {
	Name       string
	ToString   func(v any) string
	Copy       func(v any) any
	Compare    func(a, b any) int // nil if the type is not sortable
	Sortable   bool
}

var registry = map[string]QualifiedType{}

// Register records the capabilities of a named type. It is normally called
// once, from an init function, by whatever package defines T.
func Register(qt QualifiedType) {
	registry[qt.Name] = qt
}

// Lookup returns the registered capabilities for name, or false if name was
// never registered — mirroring the C++ qualified_type<T>::valid contract.
// NewCollectionNode uses it to reject an unregistered agent id type; port
// constructors do not consult the registry.
func Lookup(name string) (QualifiedType, bool) {
	qt, ok := registry[name]
	return qt, ok
}

// ToString renders v using a registered ToString override, its own String
// method (Stringer), or fmt's default verb, in that order of preference.
func ToString(name string, v any) string {
	if qt, ok := registry[name]; ok && qt.ToString != nil {
		return qt.ToString(v)
	}
	if s, ok := v.(Stringer); ok {
		return s.String()
	}
	return defaultToString(v)
}

// Copy deep-copies v using a registered Copy override, its own DeepCopy
// method (DeepCopier), or returns v unchanged (correct for any value type without
// shared mutable state, which covers the common case of structs of
// primitives and other value types).
func Copy(name string, v any) any {
	if qt, ok := registry[name]; ok && qt.Copy != nil {
		return qt.Copy(v)
	}
	if c, ok := v.(DeepCopier); ok {
		return c.DeepCopy()
	}
	return v
}

// Compare orders a and b as collection agent-id keys. Panics with a plain
// string if name was never registered as sortable — the contract violation
// the C++ implementation reports as a compile error is, here, a runtime
// panic raised when ids are compared (e.g. by SortKeys).
func Compare(name string, a, b any) int {
	qt, ok := registry[name]
	if !ok || !qt.Sortable || qt.Compare == nil {
		panic("core: type " + name + " is not registered as a sortable qualified type")
	}
	return qt.Compare(a, b)
}

// SortKeys sorts a slice of agent-id keys of the named qualified type in
// place, using its registered comparator.
func SortKeys(name string, keys []any) {
	sort.Slice(keys, func(i, j int) bool {
		return Compare(name, keys[i], keys[j]) < 0
	})
}

func defaultToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "<nil>"
	default:
		return fmt.Sprint(v)
	}
}
