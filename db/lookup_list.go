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

// LookupList maps a key to an ordered sequence of values. A key that was
// never created (or was cleared) is absent, which is distinct from a key
// mapped to an empty sequence.
type LookupList[K comparable, V any] struct {
	id   TableId
	log  *Log
	less Less[K]

	data map[K][]V
	keys *btree.BTreeG[K]
}

type lookupListEntryKind uint8

const (
	lookupListCreateKey lookupListEntryKind = iota
	lookupListPush
	lookupListRemove
	lookupListClearKey
	lookupListClear
)

type lookupListEntry[K comparable, V any] struct {
	Kind  lookupListEntryKind
	Key   K
	Value V
	Index int
}

func newLookupList[K comparable, V any](id TableId, log *Log, less Less[K]) *LookupList[K, V] {
	return &LookupList[K, V]{
		id:   id,
		log:  log,
		less: less,
		data: make(map[K][]V),
		keys: btree.NewG(32, func(a, b K) bool { return less(a, b) }),
	}
}

func (t *LookupList[K, V]) write(entry lookupListEntry[K, V]) error {
	data, err := t.log.config.codec().Marshal(&entry)
	if err != nil {
		return codecErr(err)
	}
	return t.log.write(t.id, data)
}

// CreateKey makes key present with an empty sequence, if it wasn't already.
func (t *LookupList[K, V]) CreateKey(key K) error {
	if _, ok := t.data[key]; ok {
		return nil
	}
	if err := t.write(lookupListEntry[K, V]{Kind: lookupListCreateKey, Key: key}); err != nil {
		return err
	}
	t.data[key] = []V{}
	t.keys.ReplaceOrInsert(key)
	return nil
}

// Push appends v to key's sequence, creating the key first if absent.
func (t *LookupList[K, V]) Push(key K, v V) error {
	if _, ok := t.data[key]; !ok {
		if err := t.CreateKey(key); err != nil {
			return err
		}
	}
	if err := t.write(lookupListEntry[K, V]{Kind: lookupListPush, Key: key, Value: v}); err != nil {
		return err
	}
	t.data[key] = append(t.data[key], v)
	return nil
}

// Remove deletes the element at idx from key's sequence.
func (t *LookupList[K, V]) Remove(key K, idx int) (V, error) {
	seq, ok := t.data[key]
	if !ok || idx < 0 || idx >= len(seq) {
		return zero[V](), &CorruptionError{Msg: "lookup list index out of range"}
	}
	v := seq[idx]
	if err := t.write(lookupListEntry[K, V]{Kind: lookupListRemove, Key: key, Index: idx}); err != nil {
		return zero[V](), err
	}
	t.data[key] = append(seq[:idx:idx], seq[idx+1:]...)
	return v, nil
}

// ClearKey removes key entirely, making it absent again.
func (t *LookupList[K, V]) ClearKey(key K) error {
	if _, ok := t.data[key]; !ok {
		return nil
	}
	if err := t.write(lookupListEntry[K, V]{Kind: lookupListClearKey, Key: key}); err != nil {
		return err
	}
	delete(t.data, key)
	t.keys.Delete(key)
	return nil
}

// Clear removes every key.
func (t *LookupList[K, V]) Clear() error {
	if err := t.write(lookupListEntry[K, V]{Kind: lookupListClear}); err != nil {
		return err
	}
	t.data = make(map[K][]V)
	t.keys.Clear(false)
	return nil
}

// Data returns key's sequence and whether key is present.
func (t *LookupList[K, V]) Data(key K) ([]V, bool) {
	v, ok := t.data[key]
	return v, ok
}

func (t *LookupList[K, V]) applyBytes(payload []byte) error {
	raw, err := t.log.decodeEntryPayload(payload)
	if err != nil {
		return err
	}
	var entry lookupListEntry[K, V]
	if err := t.log.config.codec().Unmarshal(raw, &entry); err != nil {
		return codecErr(err)
	}
	switch entry.Kind {
	case lookupListCreateKey:
		if _, ok := t.data[entry.Key]; !ok {
			t.data[entry.Key] = []V{}
			t.keys.ReplaceOrInsert(entry.Key)
		}
	case lookupListPush:
		t.data[entry.Key] = append(t.data[entry.Key], entry.Value)
	case lookupListRemove:
		seq, ok := t.data[entry.Key]
		if !ok || entry.Index < 0 || entry.Index >= len(seq) {
			return &CorruptionError{Msg: "replayed lookup list remove index out of range"}
		}
		t.data[entry.Key] = append(seq[:entry.Index:entry.Index], seq[entry.Index+1:]...)
	case lookupListClearKey:
		delete(t.data, entry.Key)
		t.keys.Delete(entry.Key)
	case lookupListClear:
		t.data = make(map[K][]V)
		t.keys.Clear(false)
	default:
		return &CorruptionError{Msg: "unknown lookup list log entry kind"}
	}
	return nil
}

func (t *LookupList[K, V]) compactBytes() ([]byte, error) {
	var out []byte
	var outerErr error
	t.keys.Ascend(func(key K) bool {
		entry := lookupListEntry[K, V]{Kind: lookupListCreateKey, Key: key}
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

		for _, v := range t.data[key] {
			pushEntry := lookupListEntry[K, V]{Kind: lookupListPush, Key: key, Value: v}
			data, err := t.log.config.codec().Marshal(&pushEntry)
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
