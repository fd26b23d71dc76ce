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
	"os"
)

// migrateIfNeeded upgrades a legacy v1 log (a bare record stream with no
// metadata stamp, named "<schema>") to the v2 format ("<schema>.db") by
// prepending the default stamp. It is a no-op when v2 already exists
// (leaving v1 alone for a later migration pass) or when no v1 file exists.
// A stale staging file from a crashed previous attempt is always removed,
// regardless of which of those cases applies.
func migrateIfNeeded(cfg Config) error {
	staging, err := cfg.migrationStaging()
	if err != nil {
		return err
	}
	os.Remove(staging) // crashed previous attempt; ignore ENOENT

	v2, err := cfg.dbLocationV2()
	if err != nil {
		return err
	}
	if _, err := os.Stat(v2); err == nil {
		return nil
	}

	v1, err := cfg.dbLocationV1()
	if err != nil {
		return err
	}
	v1Bytes, err := os.ReadFile(v1)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ioErr(err)
	}

	var buf bytes.Buffer
	buf.Write(hdr0(stamp{version: currentLogVersion, compactions: 0}))
	buf.Write(v1Bytes)
	if err := os.WriteFile(staging, buf.Bytes(), 0644); err != nil {
		return ioErr(err)
	}
	if err := os.Rename(staging, v2); err != nil {
		return ioErr(err)
	}
	if err := os.Remove(v1); err != nil {
		return ioErr(err)
	}
	return nil
}
