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

import (
	"bytes"
	"encoding/gob"
)

// EntryCodec is the opaque (serialize, deserialize) pair the engine
// consumes for every table's LogEntry values. Any codec that is
// self-delimiting and deterministic suffices; the engine never inspects
// the bytes it produces.
type EntryCodec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// GobCodec is the reference EntryCodec, backed by encoding/gob. gob is
// self-delimiting (a decoder consumes exactly one encoded value from a
// byte-exact framed payload) and deterministic for the struct- and
// enum-shaped LogEntry values every table kind here defines.
type GobCodec struct{}

func (GobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GobCodec) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
