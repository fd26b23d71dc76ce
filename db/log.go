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
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
)

const currentLogVersion = 1

var errLockHeld = errors.New("log file is locked by another process")

type stamp struct {
	version     uint8
	compactions uint8
}

// Log is a thin shareable reference to the log file: every table and the
// database handle holds the same *Log, mutating it through its own
// methods. It is not internally synchronized — callers share one handle
// under external mutual exclusion, per the package's single-writer model.
type Log struct {
	config Config

	file  *os.File
	flock *flock.Flock

	stamp           stamp
	incompleteWrite bool

	txActive bool
	txBuf    []byte
	currentTxs int

	watcher *fsnotify.Watcher
	changes chan struct{}

	// compactHook is set by the owning Handle (which alone knows how to
	// gather every table's compact representation) so that a size-based
	// auto-compaction can be triggered from inside write()/endTx().
	compactHook func() error
}

// newLog returns an unopened Log. Tables registered against a Builder hold
// this same pointer before Open ever runs; init populates it in place.
func newLog() *Log {
	return &Log{}
}

// init opens (or creates) the log file, performs v1->v2 migration if
// needed, acquires the file lock, and reads/validates the metadata stamp.
func (l *Log) init(cfg Config) error {
	l.config = cfg

	if cfg.CreatePath {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return ioErr(err)
		}
	}

	if cfg.NoIO {
		l.stamp = stamp{version: currentLogVersion, compactions: 0}
		return nil
	}

	if err := migrateIfNeeded(cfg); err != nil {
		return err
	}

	v2, err := cfg.dbLocationV2()
	if err != nil {
		return err
	}

	flags := os.O_RDWR
	if cfg.ReadOnly {
		flags = os.O_RDONLY
	}
	if cfg.CreateDB {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(v2, flags, 0644)
	if err != nil {
		return ioErr(err)
	}

	if cfg.FSLocks {
		fl := flock.New(v2)
		locked, err := acquireLock(fl, cfg.FSLocksBlock)
		if err != nil {
			f.Close()
			return ioErr(err)
		}
		if !locked {
			f.Close()
			return ioErr(errLockHeld)
		}
		l.flock = fl
	}

	l.file = f

	if err := l.readStamp(); err != nil {
		l.closeFileAndLock()
		return err
	}

	if cfg.ReadOnly && cfg.WatchExternal {
		if err := l.startWatch(v2); err != nil {
			l.closeFileAndLock()
			return err
		}
	}

	return nil
}

func acquireLock(fl *flock.Flock, block bool) (bool, error) {
	if block {
		if err := fl.Lock(); err != nil {
			return false, err
		}
		return true, nil
	}
	return fl.TryLock()
}

func (l *Log) readStamp() error {
	var hdr [2]byte
	n, err := io.ReadFull(l.file, hdr[:])
	switch {
	case n == 0 && err == io.EOF:
		l.stamp = stamp{version: currentLogVersion, compactions: 0}
		if !l.config.ReadOnly {
			if _, werr := l.file.Write(hdr0(l.stamp)); werr != nil {
				return ioErr(werr)
			}
		}
		return nil
	case n == 2 && err == nil:
		if hdr[0] != currentLogVersion {
			return &CorruptionError{Msg: "unexpected log_version on disk"}
		}
		l.stamp = stamp{version: hdr[0], compactions: hdr[1]}
		return nil
	default:
		return &CorruptionError{Msg: "stamp read returned neither 0 nor 2 bytes"}
	}
}

func hdr0(s stamp) []byte { return []byte{s.version, s.compactions} }

func (l *Log) closeFileAndLock() {
	if l.flock != nil {
		l.flock.Unlock()
	}
	if l.file != nil {
		l.file.Close()
	}
}

// getBytes reads the remainder of the file; the cursor sits just past the
// 2-byte stamp after init.
func (l *Log) getBytes() ([]byte, error) {
	if l.config.NoIO {
		return nil, nil
	}
	data, err := io.ReadAll(l.file)
	if err != nil {
		return nil, ioErr(err)
	}
	return data, nil
}

// frameEntry compresses and frames one table's LogEntry payload, the same
// transformation write() applies before appending, exposed so that table
// compact() implementations can build their compact representations
// without going through the tx buffer or touching the file.
func (l *Log) frameEntry(id TableId, payload []byte) ([]byte, error) {
	enc, err := compressPayload(l.config.Compress, payload)
	if err != nil {
		return nil, err
	}
	return frameRecord(id, enc), nil
}

func (l *Log) decodeEntryPayload(payload []byte) ([]byte, error) {
	return decompressPayload(l.config.Compress, payload)
}

// beginTx increments the nesting counter, allocating the shared tx buffer
// on the outermost call.
func (l *Log) beginTx() (*TxHandle, error) {
	if !l.txActive {
		l.txActive = true
		l.txBuf = l.txBuf[:0]
	}
	l.currentTxs++
	return newTxHandle(l), nil
}

// endTx is idempotent when no transaction is active. On the outermost
// commit it flushes the buffered envelope as a single id=0 record.
func (l *Log) endTx() error {
	if l.currentTxs == 0 {
		return nil
	}
	l.currentTxs--
	if l.currentTxs > 0 {
		return nil
	}
	buf := l.txBuf
	l.txActive = false
	l.txBuf = nil
	if len(buf) == 0 {
		return nil
	}
	if err := l.appendRaw(frameRecord(EngineTableId, buf)); err != nil {
		return err
	}
	return l.maybeAutoCompact()
}

// write appends one table's already-marshaled LogEntry bytes, buffering it
// inside an active transaction instead of the file.
func (l *Log) write(id TableId, payload []byte) error {
	if l.config.NoIO {
		return nil
	}
	if l.config.ReadOnly {
		return &ConfigError{Msg: "log is read-only"}
	}
	framed, err := l.frameEntry(id, payload)
	if err != nil {
		return err
	}
	if l.txActive {
		l.txBuf = append(l.txBuf, framed...)
		return nil
	}
	// The size check runs before the append: a snapshot taken now, followed
	// by this record, replays to the state the calling table reaches once
	// it has applied the entry in memory.
	if err := l.maybeAutoCompact(); err != nil {
		return err
	}
	return l.appendRaw(framed)
}

func (l *Log) appendRaw(framed []byte) error {
	if _, err := l.file.Seek(0, io.SeekEnd); err != nil {
		return ioErr(err)
	}
	if _, err := l.file.Write(framed); err != nil {
		return ioErr(err)
	}
	return nil
}

// compactLog rewrites the live log to a single envelope wrapping payload
// (the concatenation of every table's already-framed compact
// representation) and atomically replaces the live file.
func (l *Log) compactLog(payload []byte) error {
	if l.config.NoIO {
		return &ConfigError{Msg: "compaction is not available in no_io mode"}
	}

	tmpPath, err := l.config.compactionLocation()
	if err != nil {
		return err
	}
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return ioErr(err)
	}

	var tmpFlock *flock.Flock
	if l.config.FSLocks {
		tmpFlock = flock.New(tmpPath)
		locked, err := acquireLock(tmpFlock, l.config.FSLocksBlock)
		if err != nil {
			tmp.Close()
			return ioErr(err)
		}
		if !locked {
			tmp.Close()
			return ioErr(errLockHeld)
		}
	}

	newStamp := stamp{version: l.stamp.version, compactions: l.stamp.compactions + 1}
	var buf bytes.Buffer
	buf.Write(hdr0(newStamp))
	buf.Write(frameRecord(EngineTableId, payload))
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		if tmpFlock != nil {
			tmpFlock.Unlock()
		}
		return ioErr(err)
	}

	livePath, err := l.config.dbLocationV2()
	if err != nil {
		tmp.Close()
		if tmpFlock != nil {
			tmpFlock.Unlock()
		}
		return err
	}
	if err := os.Rename(tmpPath, livePath); err != nil {
		tmp.Close()
		if tmpFlock != nil {
			tmpFlock.Unlock()
		}
		return ioErr(err)
	}

	// tmp's fd and lock follow the inode across the rename; they become
	// the live handle's fd and lock without reopening anything.
	l.closeFileAndLock()
	l.file = tmp
	l.flock = tmpFlock
	l.stamp = newStamp
	l.incompleteWrite = false
	return nil
}

func (l *Log) maybeAutoCompact() error {
	if l.compactHook == nil {
		return nil
	}
	threshold, ok, err := l.config.maxLogSizeBytes()
	if err != nil || !ok {
		return err
	}
	info, err := l.file.Stat()
	if err != nil {
		return ioErr(err)
	}
	if info.Size() < threshold {
		return nil
	}
	return l.compactHook()
}

func (l *Log) Config() Config        { return l.config }
func (l *Log) IncompleteWrite() bool { return l.incompleteWrite }

// Changes exposes "new data available" notifications for a read-only,
// WatchExternal-enabled Log. It is nil unless both options are set.
func (l *Log) Changes() <-chan struct{} { return l.changes }

func (l *Log) startWatch(path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ioErr(err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return ioErr(err)
	}
	l.watcher = w
	l.changes = make(chan struct{}, 1)
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name == path && (ev.Op&(fsnotify.Write|fsnotify.Create) != 0) {
					select {
					case l.changes <- struct{}{}:
					default:
					}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// close releases the file and its lock, stopping any active watch.
func (l *Log) close() error {
	if l.watcher != nil {
		l.watcher.Close()
	}
	l.closeFileAndLock()
	return nil
}
