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

// Command sampleschema is a minimal demonstration schema: a name lookup
// table plus a single flag, opened from /tmp/logdb-sample/.
package main

import (
	"fmt"
	"log"

	"github.com/launix-de/logdb/db"
)

// SampleSchemaV1 mirrors a small, hand-written schema the way a caller
// wires one up: build it once, register every table, then Open.
type SampleSchemaV1 struct {
	*db.Handle
	Names  *db.LookupTable[string, string]
	IsGood *db.Single[bool]
}

func OpenSampleSchemaV1(cfg db.Config) (*SampleSchemaV1, error) {
	b := db.NewBuilder()
	names := db.RegisterLookupTable[string, string](b, "names")
	isGood := db.RegisterSingle[bool](b, "is_good")

	h, err := b.Open("sampleschemav1", cfg)
	if err != nil {
		return nil, err
	}
	return &SampleSchemaV1{Handle: h, Names: names, IsGood: isGood}, nil
}

func main() {
	a, err := OpenSampleSchemaV1(db.DefaultConfig("/tmp/logdb-sample/"))
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	if err := a.Names.Clear(); err != nil {
		log.Fatal(err)
	}
	if _, _, err := a.Names.Insert("alice", "Alice Smith"); err != nil {
		log.Fatal(err)
	}
	if _, _, err := a.IsGood.Insert(true); err != nil {
		log.Fatal(err)
	}

	if v, ok := a.Names.Get("alice"); ok {
		fmt.Println("names[alice] =", v)
	}
}
