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

// Builder accumulates table registrations for a schema. Tables are
// identified by the order they're registered in: the first registration
// gets TableId 1, the second TableId 2, and so on, matching the
// reference implementation's derive macro (which assigns field order the
// same way, 0-based there because it has no reserved envelope id).
//
// There is no code generation here; a Builder is just a hand-written
// constructor function per schema, which the package treats as the
// supported alternative to a derive macro.
type Builder struct {
	log    *Log
	tables []tableNode
	names  []string
}

// NewBuilder starts a fresh schema definition.
func NewBuilder() *Builder {
	return &Builder{log: newLog()}
}

func (b *Builder) register(name string, node tableNode) TableId {
	id := TableId(len(b.tables) + 1)
	if len(b.tables) >= MaxUserTables {
		panic("db: too many tables registered in one schema")
	}
	b.tables = append(b.tables, node)
	b.names = append(b.names, name)
	return id
}

// RegisterSingle adds a Single[T] table to the schema being built.
func RegisterSingle[T any](b *Builder, name string) *Single[T] {
	s := newSingle[T](0, b.log)
	s.id = b.register(name, s)
	return s
}

// RegisterList adds a List[T] table to the schema being built.
func RegisterList[T any](b *Builder, name string) *List[T] {
	l := newList[T](0, b.log)
	l.id = b.register(name, l)
	return l
}

// RegisterLookupTable adds a LookupTable[K,V] table for an ordered key
// type, using the natural ordering for deterministic compaction.
func RegisterLookupTable[K cmp.Ordered, V any](b *Builder, name string) *LookupTable[K, V] {
	return RegisterLookupTableWith[K, V](b, name, OrderedLess[K]())
}

// RegisterLookupTableWith adds a LookupTable[K,V] table with a caller
// supplied key ordering, for key types without a natural order.
func RegisterLookupTableWith[K comparable, V any](b *Builder, name string, less Less[K]) *LookupTable[K, V] {
	t := newLookupTable[K, V](0, b.log, less)
	t.id = b.register(name, t)
	return t
}

// RegisterLookupList adds a LookupList[K,V] table for an ordered key type.
func RegisterLookupList[K cmp.Ordered, V any](b *Builder, name string) *LookupList[K, V] {
	return RegisterLookupListWith[K, V](b, name, OrderedLess[K]())
}

// RegisterLookupListWith adds a LookupList[K,V] table with a caller
// supplied key ordering.
func RegisterLookupListWith[K comparable, V any](b *Builder, name string, less Less[K]) *LookupList[K, V] {
	t := newLookupList[K, V](0, b.log, less)
	t.id = b.register(name, t)
	return t
}

// RegisterLookupSet adds a LookupSet[K,V] table for an ordered key type.
func RegisterLookupSet[K cmp.Ordered, V comparable](b *Builder, name string) *LookupSet[K, V] {
	return RegisterLookupSetWith[K, V](b, name, OrderedLess[K]())
}

// RegisterLookupSetWith adds a LookupSet[K,V] table with a caller supplied
// key ordering.
func RegisterLookupSetWith[K comparable, V comparable](b *Builder, name string, less Less[K]) *LookupSet[K, V] {
	t := newLookupSet[K, V](0, b.log, less)
	t.id = b.register(name, t)
	return t
}

// Open opens (or creates) the backing log file named name (the log file on
// disk is name or name+".db"), replays any existing records into the
// registered tables, and returns a live Handle. The Builder must not be
// reused afterward.
func (b *Builder) Open(name string, cfg Config) (*Handle, error) {
	cfg.SchemaName = name
	if _, err := cfg.name(); err != nil {
		return nil, err
	}
	if err := b.log.init(cfg); err != nil {
		return nil, err
	}

	h := &Handle{log: b.log, tables: b.tables, names: b.names}
	b.log.compactHook = h.CompactLog

	raw, err := b.log.getBytes()
	if err != nil {
		return nil, err
	}
	records, incomplete := parseRecords(raw)
	b.log.incompleteWrite = incomplete
	for _, rec := range records {
		if err := h.applyRecord(rec); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// Handle is a live, opened database: a fixed set of tables backed by one
// log file. It is not safe for concurrent use from multiple goroutines
// without external synchronization, matching the single-writer model.
type Handle struct {
	log    *Log
	tables []tableNode
	names  []string
}

func (h *Handle) applyRecord(rec logRecord) error {
	idx := int(rec.id) - 1
	if idx < 0 || idx >= len(h.tables) {
		return &CorruptionError{Msg: "log entry references an unregistered table id"}
	}
	return h.tables[idx].applyBytes(rec.payload)
}

// BeginTransaction starts (or joins, if already inside one) a buffered
// transaction. Call Commit or MustCommit on the returned handle to flush
// it; nested calls only flush once the outermost handle commits.
func (h *Handle) BeginTransaction() (*TxHandle, error) {
	return h.log.beginTx()
}

// CompactLog rewrites the log to the minimal set of records that
// reconstructs the current state of every table, in registration order.
func (h *Handle) CompactLog() error {
	var payload []byte
	for _, t := range h.tables {
		framed, err := t.compactBytes()
		if err != nil {
			return err
		}
		payload = append(payload, framed...)
	}
	return h.log.compactLog(payload)
}

// Config returns the configuration this handle was opened with.
func (h *Handle) Config() Config { return h.log.Config() }

// IncompleteWrite reports whether replay found a truncated trailing
// record, which is silently dropped rather than treated as corruption.
func (h *Handle) IncompleteWrite() bool { return h.log.IncompleteWrite() }

// Changes exposes external-change notifications for a read-only,
// WatchExternal handle opened to follow another process's writes.
func (h *Handle) Changes() <-chan struct{} { return h.log.Changes() }

// Close releases the underlying file and its lock.
func (h *Handle) Close() error { return h.log.close() }
