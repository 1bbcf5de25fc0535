// Copyright (C) 2026 Arbor Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package redexlog is a thin logging facade shared by the reducer and
// diagnostics packages, so neither hardcodes a destination or format.
package redexlog

import (
	"log"
	"os"
)

// Logger wraps a standard logger with leveled helpers. The zero value is
// not usable; construct one with New.
type Logger struct {
	*log.Logger
	debug bool
}

// New returns a Logger writing to w with the given prefix. debug gates
// Debugf output, which is otherwise a no-op — the reducer's inner loop
// calls Debugf on every state transition in some builds, and skipping
// the formatting work when debug is off matters at that call rate.
func New(prefix string, debug bool) *Logger {
	return &Logger{
		Logger: log.New(os.Stderr, prefix, log.LstdFlags|log.Lmicroseconds),
		debug:  debug,
	}
}

// Debugf logs a debug-level message when the logger was constructed
// with debug enabled; otherwise it does nothing.
func (l *Logger) Debugf(format string, args ...any) {
	if l.debug {
		l.Printf("DEBUG "+format, args...)
	}
}

// Warnf logs a warning.
func (l *Logger) Warnf(format string, args ...any) {
	l.Printf("WARN "+format, args...)
}

// Fatalf logs an error and exits the process — reserved for the driver,
// never called from within package reduce itself (the reducer returns
// errors; it does not terminate the process).
func (l *Logger) Fatalf(format string, args ...any) {
	l.Logger.Fatalf("FATAL "+format, args...)
}
