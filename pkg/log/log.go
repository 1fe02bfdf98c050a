// Copyright 2025 the portmill authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	entryIndent = 4  // spaces to indent entry lines
	nameWidth   = 45 // base width for entry paths
	actionWidth = 12 // width for the action column
)

// 🎯 EntryAction says what happened to one archive entry
type EntryAction string

const (
	ActionConverted EntryAction = "converted"
	ActionFallback  EntryAction = "fallback"
	ActionPreserved EntryAction = "preserved"
	ActionSkipped   EntryAction = "skipped"
	ActionErrored   EntryAction = "errored"
)

// 📄 EntryOperation represents one entry's outcome for display
type EntryOperation struct {
	Path   string      // Entry path inside the archive
	Action EntryAction // What happened to it
	Detail string      // Optional reason or output name
}

// 🎯 Logger pairs user-facing console output with structured logging
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 📝 formatEntry formats an entry operation for display
func (l *Logger) formatEntry(op EntryOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch op.Action {
	case ActionConverted:
		symbol = '✓'
		symbolColor = color.FgGreen
	case ActionFallback:
		symbol = '⚠'
		symbolColor = color.FgYellow
	case ActionPreserved:
		symbol = '•'
		symbolColor = color.FgCyan
	case ActionErrored:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '-'
		symbolColor = color.Faint
	}

	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", entryIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", actionWidth, string(op.Action))))
	if op.Detail != "" {
		line += color.New(color.Faint).Sprint(op.Detail)
	}
	return line
}

// 📝 LogEntry logs one entry operation
func (l *Logger) LogEntry(op EntryOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatEntry(op))

	l.zlog.Info().
		Str("entry", op.Path).
		Str("action", string(op.Action)).
		Str("detail", op.Detail).
		Msg("entry operation")
}

// 📝 StartConversion prints the conversion header
func (l *Logger) StartConversion(source, target, input string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(input),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%s → %s", source, target))

	l.zlog.Info().
		Str("source", source).
		Str("target", target).
		Str("input", input).
		Msg("starting conversion")
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("portmill")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}
