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

import "github.com/google/btree"

// LookupTable is a key/value map: at most one V per K.
type LookupTable[K comparable, V any] struct {
	id   TableId
	log  *Log
	less Less[K]

	data map[K]V
	keys *btree.BTreeG[K]
}

type lookupEntryKind uint8

const (
	lookupInsert lookupEntryKind = iota
	lookupRemove
	lookupClear
)

type lookupEntry[K comparable, V any] struct {
	Kind  lookupEntryKind
	Key   K
	Value V
}

func newLookupTable[K comparable, V any](id TableId, log *Log, less Less[K]) *LookupTable[K, V] {
	return &LookupTable[K, V]{
		id:   id,
		log:  log,
		less: less,
		data: make(map[K]V),
		keys: btree.NewG(32, func(a, b K) bool { return less(a, b) }),
	}
}

func (t *LookupTable[K, V]) write(entry lookupEntry[K, V]) error {
	data, err := t.log.config.codec().Marshal(&entry)
	if err != nil {
		return codecErr(err)
	}
	return t.log.write(t.id, data)
}

// Insert sets the value for key, returning the previous value if any.
func (t *LookupTable[K, V]) Insert(key K, value V) (V, bool, error) {
	if err := t.write(lookupEntry[K, V]{Kind: lookupInsert, Key: key, Value: value}); err != nil {
		return zero[V](), false, err
	}
	prev, had := t.data[key]
	t.data[key] = value
	if !had {
		t.keys.ReplaceOrInsert(key)
	}
	return prev, had, nil
}

// Remove deletes key, returning the removed value if present.
func (t *LookupTable[K, V]) Remove(key K) (V, bool, error) {
	if err := t.write(lookupEntry[K, V]{Kind: lookupRemove, Key: key}); err != nil {
		return zero[V](), false, err
	}
	prev, had := t.data[key]
	if had {
		delete(t.data, key)
		t.keys.Delete(key)
	}
	return prev, had, nil
}

// Clear empties the table.
func (t *LookupTable[K, V]) Clear() error {
	if err := t.write(lookupEntry[K, V]{Kind: lookupClear}); err != nil {
		return err
	}
	t.data = make(map[K]V)
	t.keys.Clear(false)
	return nil
}

// Get returns the value for key, if present.
func (t *LookupTable[K, V]) Get(key K) (V, bool) {
	v, ok := t.data[key]
	return v, ok
}

func (t *LookupTable[K, V]) applyBytes(payload []byte) error {
	raw, err := t.log.decodeEntryPayload(payload)
	if err != nil {
		return err
	}
	var entry lookupEntry[K, V]
	if err := t.log.config.codec().Unmarshal(raw, &entry); err != nil {
		return codecErr(err)
	}
	switch entry.Kind {
	case lookupInsert:
		if _, had := t.data[entry.Key]; !had {
			t.keys.ReplaceOrInsert(entry.Key)
		}
		t.data[entry.Key] = entry.Value
	case lookupRemove:
		delete(t.data, entry.Key)
		t.keys.Delete(entry.Key)
	case lookupClear:
		t.data = make(map[K]V)
		t.keys.Clear(false)
	default:
		return &CorruptionError{Msg: "unknown lookup log entry kind"}
	}
	return nil
}

func (t *LookupTable[K, V]) compactBytes() ([]byte, error) {
	var out []byte
	var outerErr error
	t.keys.Ascend(func(key K) bool {
		entry := lookupEntry[K, V]{Kind: lookupInsert, Key: key, Value: t.data[key]}
		data, err := t.log.config.codec().Marshal(&entry)
		if err != nil {
			outerErr = codecErr(err)
			return false
		}
		framed, err := t.log.frameEntry(t.id, data)
		if err != nil {
			outerErr = err
			return false
		}
		out = append(out, framed...)
		return true
	})
	if outerErr != nil {
		return nil, outerErr
	}
	return out, nil
}
