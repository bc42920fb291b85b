// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"io"
	"log"
	"os"
)

// LogLevel is the verbosity of a LogGroup.
type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel=2 - warnings and errors: unsupported constructs, unresolved calls.
	WarnLevel

	// InfoLevel=3 - high-level information and results
	InfoLevel

	// DebugLevel=4 - one line per call dispatch and per convergence event.
	DebugLevel

	// TraceLevel=5 - one line per processed program point. Only usable on small scripts.
	TraceLevel
)

var levelPrefixes = [...]string{
	ErrLevel:   "[ERROR] ",
	WarnLevel:  "[WARN] ",
	InfoLevel:  "[INFO] ",
	DebugLevel: "[DEBUG] ",
	TraceLevel: "[TRACE] ",
}

// LogGroup holds one logger per level and prints only the messages at or below its level.
type LogGroup struct {
	level   LogLevel
	loggers [TraceLevel + 1]*log.Logger
}

// NewLogGroup returns a log group printing to stderr at the level of the config.
// Warnings are silenced when the config sets silence-warn.
func NewLogGroup(config *Config) *LogGroup {
	l := &LogGroup{level: LogLevel(config.LogLevel)}
	for lvl := ErrLevel; lvl <= TraceLevel; lvl++ {
		l.loggers[lvl] = log.New(os.Stderr, levelPrefixes[lvl], log.LstdFlags)
	}
	if config.SilenceWarn {
		l.loggers[WarnLevel].SetOutput(io.Discard)
	}
	return l
}

func (l *LogGroup) each(f func(*log.Logger)) {
	for _, lg := range l.loggers[ErrLevel:] {
		f(lg)
	}
}

// SetAllOutput redirects every logger of the group to w.
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.each(func(lg *log.Logger) { lg.SetOutput(w) })
}

// SetAllFlags sets the flags of every logger of the group, see log.SetFlags.
func (l *LogGroup) SetAllFlags(x int) {
	l.each(func(lg *log.Logger) { lg.SetFlags(x) })
}

// SetLevel changes the level of the group.
func (l *LogGroup) SetLevel(level LogLevel) {
	l.level = level
}

// LogsTrace returns true when trace messages are printed. Callers use it to skip building expensive messages.
func (l *LogGroup) LogsTrace() bool {
	return l.level >= TraceLevel
}

func (l *LogGroup) logf(level LogLevel, format string, v []any) {
	if l.level >= level {
		l.loggers[level].Printf(format, v...)
	}
}

// Tracef prints to the trace logger, in the manner of Printf.
func (l *LogGroup) Tracef(format string, v ...any) { l.logf(TraceLevel, format, v) }

// Debugf prints to the debug logger, in the manner of Printf.
func (l *LogGroup) Debugf(format string, v ...any) { l.logf(DebugLevel, format, v) }

// Infof prints to the info logger, in the manner of Printf.
func (l *LogGroup) Infof(format string, v ...any) { l.logf(InfoLevel, format, v) }

// Warnf prints to the warning logger, in the manner of Printf.
func (l *LogGroup) Warnf(format string, v ...any) { l.logf(WarnLevel, format, v) }

// Errorf prints to the error logger, in the manner of Printf.
func (l *LogGroup) Errorf(format string, v ...any) { l.logf(ErrLevel, format, v) }
