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
	"encoding/binary"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// compressed payload header: [flag byte][4-byte BE original length][body]
// flag 0 = stored raw (compression did not help), 1 = lz4 block, 2 = xz
// stream. The header is only present when Config.Compress != CompressNone;
// CompressNone passes bytes through untouched.
const compressHeaderLen = 5

func compressPayload(mode CompressMode, data []byte) ([]byte, error) {
	if mode == CompressNone {
		return data, nil
	}

	var flag byte
	var body []byte

	switch mode {
	case CompressLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		var c lz4.Compressor
		n, err := c.CompressBlock(data, dst)
		if err != nil {
			return nil, codecErr(err)
		}
		if n == 0 || n >= len(data) {
			flag, body = 0, data
		} else {
			flag, body = 1, dst[:n]
		}
	case CompressXZ:
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, codecErr(err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, codecErr(err)
		}
		if err := w.Close(); err != nil {
			return nil, codecErr(err)
		}
		if buf.Len() >= len(data) {
			flag, body = 0, data
		} else {
			flag, body = 2, buf.Bytes()
		}
	default:
		return nil, &ConfigError{Msg: "unknown compression mode"}
	}

	out := make([]byte, compressHeaderLen+len(body))
	out[0] = flag
	binary.BigEndian.PutUint32(out[1:5], uint32(len(data)))
	copy(out[5:], body)
	return out, nil
}

func decompressPayload(mode CompressMode, data []byte) ([]byte, error) {
	if mode == CompressNone {
		return data, nil
	}
	if len(data) < compressHeaderLen {
		return nil, &CorruptionError{Msg: "compressed payload shorter than header"}
	}
	flag := data[0]
	origLen := binary.BigEndian.Uint32(data[1:5])
	body := data[compressHeaderLen:]

	switch flag {
	case 0:
		return body, nil
	case 1:
		dst := make([]byte, origLen)
		n, err := lz4.UncompressBlock(body, dst)
		if err != nil {
			return nil, codecErr(err)
		}
		return dst[:n], nil
	case 2:
		r, err := xz.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, codecErr(err)
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, codecErr(err)
		}
		return out, nil
	default:
		return nil, &CorruptionError{Msg: "unknown compression flag in stored payload"}
	}
}
