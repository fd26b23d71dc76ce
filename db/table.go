/*
Copyright (C) 2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package db

import "cmp"

// tableNode is the contract every concrete table kind (Single, List,
// LookupTable, LookupList, LookupSet) satisfies. It is unexported because
// Go's type system cannot express it generically over each table's own
// value type(s) the way a shared trait would — the Builder holds a slice of
// these instead, one per registered table, and dispatches replay and
// compaction through it.
type tableNode interface {
	// applyBytes deserializes one LogEntry and mutates in-memory state.
	// No I/O happens here; it is only ever called during replay.
	applyBytes(payload []byte) error
	// compactBytes produces the table's compact representation: a byte
	// stream of framed records that, replayed into a freshly initialized
	// table, reconstructs the current state.
	compactBytes() ([]byte, error)
}

// Less is a strict-weak-order comparator used by LookupTable, LookupList
// and LookupSet to keep their keys in a google/btree index, which makes
// compaction output byte-for-byte reproducible across runs for the same
// logical state (the five table kinds' compact order is otherwise
// unspecified, per the package's invariants).
type Less[K any] func(a, b K) bool

// OrderedLess builds a Less for any cmp.Ordered key type, for the common
// case where keys sort naturally.
func OrderedLess[K cmp.Ordered]() Less[K] {
	return func(a, b K) bool { return a < b }
}
