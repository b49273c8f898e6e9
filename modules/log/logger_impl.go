// Copyright 2023 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package log

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LoggerImpl writes formatted log lines to a single writer
type LoggerImpl struct {
	name   string
	level  atomic.Int32
	mu     sync.Mutex
	writer io.Writer
	prefix string
}

var _ Logger = (*LoggerImpl)(nil)

// NewLoggerWithWriter creates a named logger writing to w at the given level
func NewLoggerWithWriter(name string, w io.Writer, level Level) *LoggerImpl {
	l := &LoggerImpl{name: name, writer: w}
	l.SetLevel(level)
	return l
}

// Name returns the name the logger was created with
func (l *LoggerImpl) Name() string {
	return l.name
}

// SetPrefix sets the text written before every message
func (l *LoggerImpl) SetPrefix(prefix string) {
	l.mu.Lock()
	l.prefix = prefix
	l.mu.Unlock()
}

// SetLevel changes the minimal level of messages to write
func (l *LoggerImpl) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// GetLevel returns the minimal level of messages to write
func (l *LoggerImpl) GetLevel() Level {
	return Level(l.level.Load())
}

// Log formats the message and writes it, skip is the number of stack frames above the caller
func (l *LoggerImpl) Log(skip int, level Level, format string, v ...any) {
	if level < l.GetLevel() {
		return
	}

	for i, arg := range v {
		if s, ok := arg.(LogStringer); ok {
			v[i] = s.LogString()
		}
	}
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}

	caller := "?()"
	file, line := "?", 0
	if pc, f, ln, ok := runtime.Caller(skip + 1); ok {
		file, line = filepath.Base(f), ln
		if fn := runtime.FuncForPC(pc); fn != nil {
			name := fn.Name()
			caller = name[strings.LastIndexByte(name, '.')+1:] + "()"
		}
	}

	// Prevent log spoofing through embedded newlines
	msg = strings.ReplaceAll(strings.TrimSuffix(msg, "\n"), "\n", "\n        ")

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprintf(l.writer, "%s%s %s:%d:%s [%s] %s\n",
		l.prefix, time.Now().Format("2006/01/02 15:04:05"), file, line, caller, level.initial(), msg)
}

// LevelEnabled reports whether a message of level would be written
func (l *LoggerImpl) LevelEnabled(level Level) bool {
	return level >= l.GetLevel()
}

func (l *LoggerImpl) Trace(format string, v ...any) {
	l.Log(1, TRACE, format, v...)
}

func (l *LoggerImpl) Debug(format string, v ...any) {
	l.Log(1, DEBUG, format, v...)
}

func (l *LoggerImpl) Info(format string, v ...any) {
	l.Log(1, INFO, format, v...)
}

func (l *LoggerImpl) Warn(format string, v ...any) {
	l.Log(1, WARN, format, v...)
}

func (l *LoggerImpl) Error(format string, v ...any) {
	l.Log(1, ERROR, format, v...)
}
