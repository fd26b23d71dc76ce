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

import "encoding/binary"

// TableId identifies the table a record belongs to. 0 is reserved for the
// engine's own transaction-commit and compaction wrapper records; user
// tables occupy 1..=254.
type TableId = uint8

// EngineTableId is the reserved id for envelope (wrapper) records.
const EngineTableId TableId = 0

// MaxUserTables is the largest number of user tables a schema may declare.
const MaxUserTables = 254

const recordHeaderLen = 5 // 1 byte id + 4 byte BE size

// frameRecord produces one on-disk (id, size, payload) record.
func frameRecord(id TableId, payload []byte) []byte {
	buf := make([]byte, recordHeaderLen+len(payload))
	buf[0] = id
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(payload)))
	copy(buf[5:], payload)
	return buf
}

// logRecord is one parsed, non-envelope framed record.
type logRecord struct {
	id      TableId
	payload []byte
}

// parseRecords implements the spec's get_entries parse loop: id=0 records
// are transparent envelopes (their header is consumed but their payload is
// not skipped, since it is itself a sequence of valid framed records sitting
// immediately next in the input); any trailing bytes too short to form a
// complete record set incomplete=true and truncate the stream without
// error.
func parseRecords(buf []byte) (records []logRecord, incomplete bool) {
	i := 0
	n := len(buf)
	for i < n {
		if n < i+recordHeaderLen {
			return records, true
		}
		id := buf[i]
		size := int(binary.BigEndian.Uint32(buf[i+1 : i+5]))
		i += recordHeaderLen
		if size < 0 || n < i+size {
			return records, true
		}
		if id == EngineTableId {
			// transparent envelope: header consumed, inner framed
			// records are the immediate next input
			continue
		}
		records = append(records, logRecord{id: id, payload: buf[i : i+size]})
		i += size
	}
	return records, false
}
