// Package slot provides an immutable record indexed by Go type.
//
// Each concrete type occupies at most one slot. Writes copy the record and
// never change values already handed to other holders, so two stages working
// from the same record each extend their own copy. Callers that want a closed
// slot set wrap Record and constrain Write/Read with a type union.
package slot

import (
	"fmt"
	"reflect"
	"sort"
)

// Record holds at most one value per type. The zero Record is empty and usable.
type Record struct {
	slots map[reflect.Type]any
}

// Write returns a copy of r with the slot for T set to v.
func Write[T any](r Record, v T) Record {
	next := make(map[reflect.Type]any, len(r.slots)+1)
	for k, val := range r.slots {
		next[k] = val
	}
	next[reflect.TypeFor[T]()] = v
	return Record{slots: next}
}

// Read returns the value stored for T. Reading a slot that was never written
// is a programming error and panics.
func Read[T any](r Record) T {
	v, ok := Lookup[T](r)
	if !ok {
		panic(fmt.Sprintf("slot: %s read before it was written", reflect.TypeFor[T]()))
	}
	return v
}

// Lookup returns the value stored for T and whether it was present.
func Lookup[T any](r Record) (T, bool) {
	raw, ok := r.slots[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return raw.(T), true
}

// Has reports whether the slot for T has been written.
func Has[T any](r Record) bool {
	_, ok := r.slots[reflect.TypeFor[T]()]
	return ok
}

// Len returns the number of populated slots.
func (r Record) Len() int { return len(r.slots) }

// Types lists the populated slot types, sorted by name.
func (r Record) Types() []string {
	names := make([]string, 0, len(r.slots))
	for t := range r.slots {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}
