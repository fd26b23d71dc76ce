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
	"sync"
	"time"

	"github.com/dc0d/onexit"
)

// Compactable is the part of Handle a background compactor needs. Callers
// that already share their Handle behind an interface of their own can
// satisfy this instead of exposing the concrete type.
type Compactable interface {
	CompactLog() error
}

// RunCompactor sleeps for period, compacts db under mu, and repeats until
// cancel is closed, the same sleep-then-check loop the reference
// implementation's own maintenance thread uses. A cancel arriving mid-sleep
// ends the wait at once; one arriving mid-compaction is observed when that
// compaction returns. It returns the number of compactions it completed.
//
// db is compacted under mu because a Handle has no internal
// synchronization of its own; callers running a compactor alongside normal
// traffic must already be taking mu around every other access too.
func RunCompactor(mu *sync.Mutex, db Compactable, period time.Duration, cancel <-chan struct{}) int {
	completed := 0
	for {
		select {
		case <-cancel:
			return completed
		case <-time.After(period):
		}
		select {
		case <-cancel:
			return completed
		default:
		}

		mu.Lock()
		err := db.CompactLog()
		mu.Unlock()
		if err == nil {
			completed++
		}
	}
}

// StartCompactor launches RunCompactor in its own goroutine and registers
// an onexit hook that closes cancel on process shutdown, so a forgotten
// explicit stop still keeps the loop from starting another compaction. The
// hook does not wait for the goroutine or for a compaction already in
// progress. The returned stop function is idempotent.
func StartCompactor(mu *sync.Mutex, db Compactable, period time.Duration) (result <-chan int, stop func()) {
	cancel := make(chan struct{})
	done := make(chan int, 1)

	go func() {
		done <- RunCompactor(mu, db, period, cancel)
	}()

	var once sync.Once
	stopFn := func() {
		once.Do(func() { close(cancel) })
	}
	onexit.Register(func() { stopFn() })

	return done, stopFn
}
