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

// Command dbshell is an interactive REPL over a names/is_good sample
// database, for poking at a log file by hand during development.
package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/launix-de/logdb/db"
)

const prompt = "\033[32mdb>\033[0m "
const resultPrompt = "\033[31m=\033[0m "

func main() {
	path := flag.String("path", "/tmp/logdb-sample/", "database folder")
	flag.Parse()

	b := db.NewBuilder()
	names := db.RegisterLookupTable[string, string](b, "names")
	isGood := db.RegisterSingle[bool](b, "is_good")

	h, err := b.Open("sample", db.DefaultConfig(*path))
	if err != nil {
		panic(err)
	}
	defer h.Close()

	if h.IncompleteWrite() {
		fmt.Println("warning: trailing incomplete write was discarded on open")
	}

	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       ".dbshell-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "get":
			if len(fields) != 2 {
				fmt.Println("usage: get <name>")
				continue
			}
			if v, ok := names.Get(fields[1]); ok {
				fmt.Println(resultPrompt, v)
			} else {
				fmt.Println(resultPrompt, "(absent)")
			}
		case "set":
			if len(fields) != 3 {
				fmt.Println("usage: set <name> <value>")
				continue
			}
			if _, _, err := names.Insert(fields[1], fields[2]); err != nil {
				fmt.Println("error:", err)
			}
		case "del":
			if len(fields) != 2 {
				fmt.Println("usage: del <name>")
				continue
			}
			if _, _, err := names.Remove(fields[1]); err != nil {
				fmt.Println("error:", err)
			}
		case "good":
			if len(fields) != 2 {
				fmt.Println("usage: good <true|false>")
				continue
			}
			if _, _, err := isGood.Insert(fields[1] == "true"); err != nil {
				fmt.Println("error:", err)
			}
		case "compact":
			if err := h.CompactLog(); err != nil {
				fmt.Println("error:", err)
			} else {
				fmt.Println(resultPrompt, "compacted")
			}
		case "exit", "quit":
			return
		default:
			fmt.Println("commands: get, set, del, good, compact, exit")
		}
	}
}
