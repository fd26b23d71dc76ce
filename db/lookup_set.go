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

// LookupSet maps a key to a set of distinct values. A key that was never
// inserted into (or was cleared) is absent, distinct from a key mapped to
// an empty set.
type LookupSet[K comparable, V comparable] struct {
	id   TableId
	log  *Log
	less Less[K]

	data map[K]map[V]struct{}
	keys *btree.BTreeG[K]
}

type lookupSetEntryKind uint8

const (
	lookupSetCreateKey lookupSetEntryKind = iota
	lookupSetInsert
	lookupSetRemove
	lookupSetClearKey
	lookupSetClear
)

type lookupSetEntry[K comparable, V comparable] struct {
	Kind  lookupSetEntryKind
	Key   K
	Value V
}

func newLookupSet[K comparable, V comparable](id TableId, log *Log, less Less[K]) *LookupSet[K, V] {
	return &LookupSet[K, V]{
		id:   id,
		log:  log,
		less: less,
		data: make(map[K]map[V]struct{}),
		keys: btree.NewG(32, func(a, b K) bool { return less(a, b) }),
	}
}

func (t *LookupSet[K, V]) write(entry lookupSetEntry[K, V]) error {
	data, err := t.log.config.codec().Marshal(&entry)
	if err != nil {
		return codecErr(err)
	}
	return t.log.write(t.id, data)
}

// CreateKey makes key present with an empty set, if it wasn't already —
// a key that was never created (or was cleared) is absent, which is
// distinct from a key mapped to an empty set.
func (t *LookupSet[K, V]) CreateKey(key K) error {
	if _, ok := t.data[key]; ok {
		return nil
	}
	if err := t.write(lookupSetEntry[K, V]{Kind: lookupSetCreateKey, Key: key}); err != nil {
		return err
	}
	t.data[key] = make(map[V]struct{})
	t.keys.ReplaceOrInsert(key)
	return nil
}

// Insert adds value to key's set, creating the key first if absent. It
// returns true iff value was not already a member — the reference
// implementation's insert_inner discarded this, which made "was this
// newly added" observable only by a separate contains check; here the
// return value is the point.
func (t *LookupSet[K, V]) Insert(key K, value V) (bool, error) {
	if set, hadKey := t.data[key]; hadKey {
		if _, already := set[value]; already {
			return false, nil
		}
	} else if err := t.CreateKey(key); err != nil {
		return false, err
	}
	if err := t.write(lookupSetEntry[K, V]{Kind: lookupSetInsert, Key: key, Value: value}); err != nil {
		return false, err
	}
	t.data[key][value] = struct{}{}
	return true, nil
}

// Remove deletes value from key's set, returning whether it had been present.
func (t *LookupSet[K, V]) Remove(key K, value V) (bool, error) {
	set, ok := t.data[key]
	if !ok {
		return false, nil
	}
	if _, ok := set[value]; !ok {
		return false, nil
	}
	if err := t.write(lookupSetEntry[K, V]{Kind: lookupSetRemove, Key: key, Value: value}); err != nil {
		return false, err
	}
	delete(set, value)
	return true, nil
}

// ClearKey removes key and its entire set, making it absent again.
func (t *LookupSet[K, V]) ClearKey(key K) error {
	if _, ok := t.data[key]; !ok {
		return nil
	}
	if err := t.write(lookupSetEntry[K, V]{Kind: lookupSetClearKey, Key: key}); err != nil {
		return err
	}
	delete(t.data, key)
	t.keys.Delete(key)
	return nil
}

// Clear removes every key.
func (t *LookupSet[K, V]) Clear() error {
	if err := t.write(lookupSetEntry[K, V]{Kind: lookupSetClear}); err != nil {
		return err
	}
	t.data = make(map[K]map[V]struct{})
	t.keys.Clear(false)
	return nil
}

// Data returns whether key is present and, if so, its members as a slice in
// unspecified order.
func (t *LookupSet[K, V]) Data(key K) ([]V, bool) {
	set, ok := t.data[key]
	if !ok {
		return nil, false
	}
	out := make([]V, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out, true
}

func (t *LookupSet[K, V]) applyBytes(payload []byte) error {
	raw, err := t.log.decodeEntryPayload(payload)
	if err != nil {
		return err
	}
	var entry lookupSetEntry[K, V]
	if err := t.log.config.codec().Unmarshal(raw, &entry); err != nil {
		return codecErr(err)
	}
	switch entry.Kind {
	case lookupSetCreateKey:
		if _, ok := t.data[entry.Key]; !ok {
			t.data[entry.Key] = make(map[V]struct{})
			t.keys.ReplaceOrInsert(entry.Key)
		}
	case lookupSetInsert:
		set, ok := t.data[entry.Key]
		if !ok {
			set = make(map[V]struct{})
			t.data[entry.Key] = set
			t.keys.ReplaceOrInsert(entry.Key)
		}
		set[entry.Value] = struct{}{}
	case lookupSetRemove:
		if set, ok := t.data[entry.Key]; ok {
			delete(set, entry.Value)
		}
	case lookupSetClearKey:
		delete(t.data, entry.Key)
		t.keys.Delete(entry.Key)
	case lookupSetClear:
		t.data = make(map[K]map[V]struct{})
		t.keys.Clear(false)
	default:
		return &CorruptionError{Msg: "unknown lookup set log entry kind"}
	}
	return nil
}

func (t *LookupSet[K, V]) compactBytes() ([]byte, error) {
	var out []byte
	var outerErr error
	t.keys.Ascend(func(key K) bool {
		entries := []lookupSetEntry[K, V]{{Kind: lookupSetCreateKey, Key: key}}
		for v := range t.data[key] {
			entries = append(entries, lookupSetEntry[K, V]{Kind: lookupSetInsert, Key: key, Value: v})
		}
		for _, entry := range entries {
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
		}
		return true
	})
	if outerErr != nil {
		return nil, outerErr
	}
	return out, nil
}
