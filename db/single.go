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

// Single holds at most one value of T.
type Single[T any] struct {
	id      TableId
	log     *Log
	value   T
	present bool
}

type singleEntry[T any] struct {
	Present bool
	Value   T
}

func newSingle[T any](id TableId, log *Log) *Single[T] {
	return &Single[T]{id: id, log: log}
}

// Insert replaces the held value and returns the one it displaced, if any.
func (s *Single[T]) Insert(v T) (T, bool, error) {
	entry := singleEntry[T]{Present: true, Value: v}
	data, err := s.log.config.codec().Marshal(&entry)
	if err != nil {
		return zero[T](), false, codecErr(err)
	}

	prev, hadPrev := s.value, s.present
	s.value, s.present = v, true

	if err := s.log.write(s.id, data); err != nil {
		return prev, hadPrev, err
	}
	return prev, hadPrev, nil
}

// Clear removes the held value and returns it, if any.
func (s *Single[T]) Clear() (T, bool, error) {
	entry := singleEntry[T]{Present: false}
	data, err := s.log.config.codec().Marshal(&entry)
	if err != nil {
		return zero[T](), false, codecErr(err)
	}

	prev, hadPrev := s.value, s.present
	var zeroT T
	s.value, s.present = zeroT, false

	if err := s.log.write(s.id, data); err != nil {
		return prev, hadPrev, err
	}
	return prev, hadPrev, nil
}

// Data returns the held value and whether one is present.
func (s *Single[T]) Data() (T, bool) {
	return s.value, s.present
}

func (s *Single[T]) applyBytes(payload []byte) error {
	raw, err := s.log.decodeEntryPayload(payload)
	if err != nil {
		return err
	}
	var entry singleEntry[T]
	if err := s.log.config.codec().Unmarshal(raw, &entry); err != nil {
		return codecErr(err)
	}
	if entry.Present {
		s.value, s.present = entry.Value, true
	} else {
		var zeroT T
		s.value, s.present = zeroT, false
	}
	return nil
}

func (s *Single[T]) compactBytes() ([]byte, error) {
	if !s.present {
		return nil, nil
	}
	entry := singleEntry[T]{Present: true, Value: s.value}
	data, err := s.log.config.codec().Marshal(&entry)
	if err != nil {
		return nil, codecErr(err)
	}
	return s.log.frameEntry(s.id, data)
}

func zero[T any]() T {
	var z T
	return z
}
