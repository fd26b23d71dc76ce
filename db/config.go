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
	"path/filepath"

	units "github.com/docker/go-units"
)

// CompressMode selects the compression wrapper applied to a table entry's
// marshaled payload bytes, independent of the Codec used to produce them.
type CompressMode uint8

const (
	// CompressNone stores payload bytes verbatim.
	CompressNone CompressMode = iota
	// CompressLZ4 favors append/replay speed; intended for the live log.
	CompressLZ4
	// CompressXZ favors ratio over speed; intended for compaction
	// snapshots headed for cold storage.
	CompressXZ
)

// Config collects the options governing one Log's on-disk behavior.
// SchemaName is populated by the schema builder (see Builder.Open), not by
// the caller.
type Config struct {
	// Path is the directory holding the log file.
	Path string
	// SchemaName is stamped in by the schema builder at Open time.
	SchemaName string

	// CreatePath creates Path if it does not exist.
	CreatePath bool
	// CreateDB creates the log file if it does not exist.
	CreateDB bool
	// ReadOnly refuses appends; writes return a ConfigError.
	ReadOnly bool
	// NoIO runs entirely in memory: no file is ever opened.
	NoIO bool

	// FSLocks acquires an exclusive file lock over the log for the life
	// of the handle.
	FSLocks bool
	// FSLocksBlock blocks until the lock is acquired instead of failing
	// immediately when another process already holds it.
	FSLocksBlock bool

	// Codec marshals/unmarshals LogEntry values to bytes. Defaults to
	// GobCodec when left nil.
	Codec EntryCodec

	// Compress selects the payload compression wrapper. Changing this
	// between opens of the same log file is the caller's responsibility;
	// no magic byte on disk records which mode produced a given payload.
	Compress CompressMode

	// MaxLogSize, when non-empty, is a human-readable size (e.g. "64MB",
	// parsed with github.com/docker/go-units) past which the handle
	// triggers an inline compaction on its next append outside of a
	// transaction. Empty disables the check.
	MaxLogSize string

	// WatchExternal, when combined with ReadOnly, starts an fsnotify
	// watch on the log file so a follower handle can learn about writer
	// activity without polling. See Log.Changes.
	WatchExternal bool
}

// DefaultConfig returns a Config with the engine's documented defaults:
// CreatePath, CreateDB and FSLocks on; everything else off.
func DefaultConfig(path string) Config {
	return Config{
		Path:         path,
		CreatePath:   true,
		CreateDB:     true,
		FSLocks:      true,
		FSLocksBlock: false,
	}
}

// InFolder mirrors the reference implementation's Config::in_folder
// convenience constructor.
func InFolder(path string) Config {
	return DefaultConfig(path)
}

func (c *Config) codec() EntryCodec {
	if c.Codec == nil {
		return GobCodec{}
	}
	return c.Codec
}

func (c *Config) maxLogSizeBytes() (int64, bool, error) {
	if c.MaxLogSize == "" {
		return 0, false, nil
	}
	n, err := units.FromHumanSize(c.MaxLogSize)
	if err != nil {
		return 0, false, &ConfigError{Msg: "invalid MaxLogSize: " + err.Error()}
	}
	return n, n > 0, nil
}

func (c *Config) dbLocationV2() (string, error) {
	name, err := c.name()
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Path, name+".db"), nil
}

func (c *Config) dbLocationV1() (string, error) {
	name, err := c.name()
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Path, name), nil
}

func (c *Config) compactionLocation() (string, error) {
	name, err := c.name()
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Path, name+".db.tmp"), nil
}

func (c *Config) migrationStaging() (string, error) {
	name, err := c.name()
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Path, name+".db.migration"), nil
}

func (c *Config) name() (string, error) {
	if c.SchemaName == "" {
		return "", &ConfigError{Msg: "schema name not populated: the schema builder should have done this"}
	}
	return c.SchemaName, nil
}
