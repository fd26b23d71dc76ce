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

// List holds an ordered, append-friendly sequence of T.
type List[T any] struct {
	id   TableId
	log  *Log
	data []T
}

type listEntryKind uint8

const (
	listPush listEntryKind = iota
	listRemove
	listClear
	listInsert
)

type listEntry[T any] struct {
	Kind  listEntryKind
	Value T
	Index int
}

func newList[T any](id TableId, log *Log) *List[T] {
	return &List[T]{id: id, log: log}
}

func (l *List[T]) write(entry listEntry[T]) error {
	data, err := l.log.config.codec().Marshal(&entry)
	if err != nil {
		return codecErr(err)
	}
	return l.log.write(l.id, data)
}

// Push appends v to the end of the sequence.
func (l *List[T]) Push(v T) error {
	if err := l.write(listEntry[T]{Kind: listPush, Value: v}); err != nil {
		return err
	}
	l.data = append(l.data, v)
	return nil
}

// Pop removes and returns the last element, logged as Remove(len-1).
func (l *List[T]) Pop() (T, bool, error) {
	if len(l.data) == 0 {
		return zero[T](), false, nil
	}
	idx := len(l.data) - 1
	v := l.data[idx]
	if err := l.write(listEntry[T]{Kind: listRemove, Index: idx}); err != nil {
		return zero[T](), false, err
	}
	l.data = l.data[:idx]
	return v, true, nil
}

// Insert places v at idx, shifting the element currently there (and
// everything after it) one position to the right.
func (l *List[T]) Insert(idx int, v T) error {
	if idx < 0 || idx > len(l.data) {
		return &CorruptionError{Msg: "list index out of range"}
	}
	if err := l.write(listEntry[T]{Kind: listInsert, Index: idx, Value: v}); err != nil {
		return err
	}
	l.data = append(l.data, zero[T]())
	copy(l.data[idx+1:], l.data[idx:])
	l.data[idx] = v
	return nil
}

// Remove deletes the element at idx, shifting later elements down, and
// returns the removed value and whether idx was in range.
func (l *List[T]) Remove(idx int) (T, bool, error) {
	if idx < 0 || idx >= len(l.data) {
		return zero[T](), false, nil
	}
	v := l.data[idx]
	if err := l.write(listEntry[T]{Kind: listRemove, Index: idx}); err != nil {
		return zero[T](), false, err
	}
	l.data = append(l.data[:idx], l.data[idx+1:]...)
	return v, true, nil
}

// Clear empties the sequence.
func (l *List[T]) Clear() error {
	if err := l.write(listEntry[T]{Kind: listClear}); err != nil {
		return err
	}
	l.data = nil
	return nil
}

// Data returns the current sequence. The caller must not mutate it.
func (l *List[T]) Data() []T {
	return l.data
}

func (l *List[T]) applyBytes(payload []byte) error {
	raw, err := l.log.decodeEntryPayload(payload)
	if err != nil {
		return err
	}
	var entry listEntry[T]
	if err := l.log.config.codec().Unmarshal(raw, &entry); err != nil {
		return codecErr(err)
	}
	switch entry.Kind {
	case listPush:
		l.data = append(l.data, entry.Value)
	case listRemove:
		if entry.Index < 0 || entry.Index >= len(l.data) {
			return &CorruptionError{Msg: "replayed list remove index out of range"}
		}
		l.data = append(l.data[:entry.Index], l.data[entry.Index+1:]...)
	case listInsert:
		if entry.Index < 0 || entry.Index > len(l.data) {
			return &CorruptionError{Msg: "replayed list insert index out of range"}
		}
		l.data = append(l.data, zero[T]())
		copy(l.data[entry.Index+1:], l.data[entry.Index:])
		l.data[entry.Index] = entry.Value
	case listClear:
		l.data = nil
	default:
		return &CorruptionError{Msg: "unknown list log entry kind"}
	}
	return nil
}

func (l *List[T]) compactBytes() ([]byte, error) {
	var out []byte
	for _, v := range l.data {
		entry := listEntry[T]{Kind: listPush, Value: v}
		data, err := l.log.config.codec().Marshal(&entry)
		if err != nil {
			return nil, codecErr(err)
		}
		framed, err := l.log.frameEntry(l.id, data)
		if err != nil {
			return nil, err
		}
		out = append(out, framed...)
	}
	return out, nil
}
