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
	"fmt"
	"os"
	"runtime"

	"github.com/google/uuid"
)

// TxHandle buffers writes made while it is alive; nested handles share one
// buffer and only the outermost commit flushes it as a single envelope
// record. Transactions can only commit or be discarded through process
// death before append — there is no abort.
//
// Go has no destructors, so the reference implementation's "commit on drop,
// panic on error" behavior is split into an explicit Commit (returns the
// error) and MustCommit (panics on error, for callers who want the
// reference implementation's default). A finalizer is registered as a
// backstop for handles a caller forgets to commit explicitly.
type TxHandle struct {
	log  *Log
	done bool
	id   uuid.UUID
}

func newTxHandle(log *Log) *TxHandle {
	t := &TxHandle{log: log, id: uuid.New()}
	runtime.SetFinalizer(t, (*TxHandle).finalize)
	return t
}

// ID returns a value unique to this transaction handle, for correlating
// a begin/commit pair across log lines; it has no on-disk meaning and is
// never written to the log itself.
func (t *TxHandle) ID() uuid.UUID { return t.id }

// Commit ends this transaction's scope, returning the outermost flush's
// I/O error instead of panicking. Safe to call more than once; only the
// first call has effect.
func (t *TxHandle) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	runtime.SetFinalizer(t, nil)
	return t.log.endTx()
}

// MustCommit mirrors the reference implementation's drop-time default:
// commit, and panic if the commit fails.
func (t *TxHandle) MustCommit() {
	if err := t.Commit(); err != nil {
		panic(err)
	}
}

func (t *TxHandle) finalize() {
	if t.done {
		return
	}
	t.done = true
	if err := t.log.endTx(); err != nil {
		// A finalizer cannot safely panic (the runtime treats a panicking
		// finalizer as fatal), so a forgotten Commit reports the failure
		// the same way a poisoned handle already documents: visibly, but
		// without crashing the process.
		fmt.Fprintln(os.Stderr, "db: transaction", t.id, "commit failed during finalize:", err)
	}
}
