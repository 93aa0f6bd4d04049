// Package table implements the open-addressing hash table used
// throughout the runtime for globals, string interning, and class
// methods and fields. It is the one data structure design shared by all
// three uses, so it lives in its own package rather than being
// special-cased per caller.
package table

import "github.com/kristofer/loxvm/internal/value"

// StringKey is the minimal contract a key needs: stable content bytes
// and a precomputed hash. *object.ObjString satisfies this structurally
// — table never imports package object, which is what lets object
// import table (for ObjClass.Methods) without an import cycle.
type StringKey interface {
	value.Obj
	Bytes() string
	HashCode() uint32
}

// entry is one slot. An empty slot has a nil Key and a Nil value; a
// tombstone (a deleted slot that must still block probe sequences) has
// a nil Key and a true-bool value — the same encoding clox uses to tell
// the two apart without a third state field.
type entry struct {
	key   StringKey
	value value.Value
}

func (e entry) isTombstone() bool {
	return e.key == nil && e.value.IsBool() && e.value.AsBool()
}

func (e entry) isEmpty() bool {
	return e.key == nil && !e.isTombstone()
}

// maxLoad is the load factor the table grows at. 0.75 matches the
// probe-sequence-length tradeoff the rest of the design assumes.
const maxLoad = 0.75

// Table is an open-addressing hash table keyed by StringKey with linear
// probing and tombstone-based deletion.
type Table struct {
	count   int // live entries + tombstones
	entries []entry
}

// New returns an empty table. Like clox, the backing array is not
// allocated until the first Set.
func New() *Table {
	return &Table{}
}

// Len reports the number of live (non-tombstone) entries.
func (t *Table) Len() int {
	live := 0
	for _, e := range t.entries {
		if !e.isEmpty() && !e.isTombstone() {
			live++
		}
	}
	return live
}

// Get looks up key, reporting whether it was found.
func (t *Table) Get(key StringKey) (value.Value, bool) {
	if len(t.entries) == 0 {
		return value.Nil, false
	}
	e := t.findEntry(t.entries, key)
	if e.key == nil {
		return value.Nil, false
	}
	return e.value, true
}

// Set inserts or overwrites key's value, returning true if this created
// a brand new key (as opposed to overwriting an existing one).
func (t *Table) Set(key StringKey, v value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow(growCapacity(len(t.entries)))
	}

	idx := t.findIndex(t.entries, key)
	e := &t.entries[idx]
	isNew := e.key == nil
	if isNew && e.isEmpty() {
		t.count++
	}
	e.key = key
	e.value = v
	return isNew
}

// Delete removes key, leaving a tombstone behind so later probe
// sequences that passed through this slot still find entries beyond it.
func (t *Table) Delete(key StringKey) bool {
	if len(t.entries) == 0 {
		return false
	}
	idx := t.findIndex(t.entries, key)
	e := &t.entries[idx]
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = value.Bool(true) // tombstone marker
	return true
}

// FindString looks up an interned string by content rather than by an
// existing StringKey, which is exactly what the compiler and the string
// concatenation path need before they know whether an ObjString for
// this content already exists.
func (t *Table) FindString(chars string, hash uint32) (StringKey, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	mask := uint32(len(t.entries) - 1)
	index := hash & mask
	for {
		e := t.entries[index]
		if e.isEmpty() {
			return nil, false
		}
		if e.key != nil && e.key.HashCode() == hash && e.key.Bytes() == chars {
			return e.key, true
		}
		index = (index + 1) & mask
	}
}

// RemoveWhite sweeps out every entry whose key is unmarked, used by the
// string-interning table during garbage collection so unreachable
// interned strings don't outlive their last reference. isMarked reports
// the live bit the collector set during the mark phase.
func (t *Table) RemoveWhite(isMarked func(StringKey) bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && !e.isTombstone() && !isMarked(e.key) {
			e.key = nil
			e.value = value.Bool(true)
		}
	}
}

// ForEach visits every live entry, used by the collector to mark
// reachable values and by REPL/debug tooling to enumerate globals.
func (t *Table) ForEach(fn func(key StringKey, v value.Value)) {
	for _, e := range t.entries {
		if !e.isEmpty() && !e.isTombstone() {
			fn(e.key, e.value)
		}
	}
}

func (t *Table) findEntry(entries []entry, key StringKey) entry {
	idx := t.findIndex(entries, key)
	return entries[idx]
}

// findIndex runs the probe sequence for key over entries, returning the
// slot it belongs in: either the slot already holding it, or the first
// empty slot (preferring an earlier tombstone, so repeated
// insert/delete cycles don't leak slots) a linear probe would reach.
func (t *Table) findIndex(entries []entry, key StringKey) int {
	mask := uint32(len(entries) - 1)
	index := key.HashCode() & mask
	var tombstone = -1
	for {
		e := entries[index]
		switch {
		case e.isEmpty():
			if tombstone != -1 {
				return tombstone
			}
			return int(index)
		case e.isTombstone():
			if tombstone == -1 {
				tombstone = int(index)
			}
		case e.key == key:
			return int(index)
		}
		index = (index + 1) & mask
	}
}

func growCapacity(cap int) int {
	if cap < 8 {
		return 8
	}
	return cap * 2
}

func (t *Table) grow(newCap int) {
	newEntries := make([]entry, newCap)
	t.count = 0
	for _, e := range t.entries {
		if e.key == nil {
			continue
		}
		idx := t.findIndex(newEntries, e.key)
		newEntries[idx].key = e.key
		newEntries[idx].value = e.value
		t.count++
	}
	t.entries = newEntries
}
