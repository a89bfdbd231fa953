// Copyright (C) 2025-2026, VigilantDoomer
//
// This file is part of VITree program.
//
// VITree is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// VITree is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with VITree.  If not, see <https://www.gnu.org/licenses/>.

// Central log (stdout/stderr) of the program
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type MyLogger struct {
	// Writing to the same slot allows to clobber stuff so that we don't see the
	// same thing written over and over again
	slots []string
	// Mutex is used to order writes to stdout and stderr, as well as Sync call
	mu        sync.Mutex
	syslog    *logrus.Logger
	errlog    *logrus.Logger
	verbosity int
}

// Logs specific to one task (one cell evaluation in a wave is always worked on
// by a single goroutine until complete). Their output is not forwarded to the
// stdout, but is buffered until merged into main log of MyLogger type, which
// the tree does in wave order so that the log reads the same regardless of
// how many workers there were
type MiniLogger struct {
	parent  *MyLogger
	entries []miniEntry
}

type miniEntry struct {
	level  int // 0 = Printf, otherwise verbosity level
	fields logrus.Fields
	msg    string
}

func newLogrus(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	// gating by verbosity is done here, not by logrus
	l.SetLevel(logrus.TraceLevel)
	return l
}

func CreateLogger() *MyLogger {
	return CreateLoggerTo(os.Stdout, os.Stderr, 0)
}

func CreateLoggerTo(out, errOut io.Writer, verbosity int) *MyLogger {
	return &MyLogger{
		syslog:    newLogrus(out),
		errlog:    newLogrus(errOut),
		verbosity: verbosity,
	}
}

var Log = CreateLogger()

func trimmed(s string, a ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(s, a...), "\n")
}

func (log *MyLogger) SetVerbosity(level int) {
	log.mu.Lock()
	log.verbosity = level
	log.mu.Unlock()
}

func (log *MyLogger) VerbosityLevel() int {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.verbosity
}

// Your generic printf to let user see things
func (log *MyLogger) Printf(s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.syslog.Info(trimmed(s, a...))
}

// As generic as printf, but writes to stderr instead of stdout
// Does NOT interrupt execution of the program
func (log *MyLogger) Error(s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.errlog.Error(trimmed(s, a...))
}

// For advanced users or users that are curious, or programmers, there is
// stuff they might want to see but only when they can really bother to spend
// time reading it. Level 1 goes out as debug, anything above as trace
func (log *MyLogger) Verbose(verbosityLevel int, s string, a ...interface{}) {
	log.VerboseFields(verbosityLevel, nil, s, a...)
}

func (log *MyLogger) VerboseFields(verbosityLevel int, fields logrus.Fields, s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	if verbosityLevel > log.verbosity {
		return
	}
	log.emit(verbosityLevel, fields, trimmed(s, a...))
}

// must be called with mu held
func (log *MyLogger) emit(level int, fields logrus.Fields, msg string) {
	entry := logrus.NewEntry(log.syslog)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	switch {
	case level <= 0:
		entry.Info(msg)
	case level == 1:
		entry.Debug(msg)
	default:
		entry.Trace(msg)
	}
}

// Panicking is not a good thing, but at least we can now use formatted printing
// for it
func (log *MyLogger) Panic(s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	panic(fmt.Sprintf(s, a...))
}

// Writes to the slot, clobbering whatever was there before us in that same slot
// Used for the progress-style lines (current insert, current wave) where only
// the latest value matters
func (log *MyLogger) Push(slotNumber int, s string, a ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	for slotNumber >= len(log.slots) {
		log.slots = append(log.slots, "")
	}
	log.slots[slotNumber] = trimmed(s, a...)
}

// Now that slots have been written over multiple times, time to see what was
// written to begin with
func (log *MyLogger) Flush() {
	log.mu.Lock()
	defer log.mu.Unlock()
	for _, slot := range log.slots {
		if slot != "" {
			log.syslog.Info(slot)
		}
	}
	log.slots = nil
}

// Sync is used to wait until all messages are written to the output
func (log *MyLogger) Sync() {
	log.mu.Lock()
	log.mu.Unlock()
}

func (log *MyLogger) Merge(mlog *MiniLogger, preface string) {
	if mlog == nil {
		return
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	if len(preface) > 0 && len(mlog.entries) > 0 {
		log.syslog.Info(preface)
	}
	for _, e := range mlog.entries {
		if e.level <= log.verbosity {
			log.emit(e.level, e.fields, e.msg)
		}
	}
	mlog.entries = nil
}

func CreateMiniLogger(parent *MyLogger) *MiniLogger {
	if parent == nil {
		parent = Log
	}
	return &MiniLogger{parent: parent}
}

func (mlog *MiniLogger) Printf(s string, a ...interface{}) {
	if mlog == nil {
		Log.Printf(s, a...)
		return
	}
	mlog.entries = append(mlog.entries, miniEntry{msg: trimmed(s, a...)})
}

func (mlog *MiniLogger) Verbose(verbosityLevel int, s string, a ...interface{}) {
	mlog.VerboseFields(verbosityLevel, nil, s, a...)
}

func (mlog *MiniLogger) VerboseFields(verbosityLevel int, fields logrus.Fields, s string, a ...interface{}) {
	if mlog == nil {
		Log.VerboseFields(verbosityLevel, fields, s, a...)
		return
	}
	if verbosityLevel <= mlog.parent.VerbosityLevel() {
		mlog.entries = append(mlog.entries, miniEntry{
			level:  verbosityLevel,
			fields: fields,
			msg:    trimmed(s, a...),
		})
	}
}
