// Copyright 2014 The Gogs Authors. All rights reserved.
// Copyright 2019 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package log

import (
	"os"
	"sync/atomic"
)

var defaultLogger atomic.Pointer[LoggerImpl]

func init() {
	defaultLogger.Store(NewLoggerWithWriter("default", os.Stderr, INFO))
}

// GetLogger returns the default logger
func GetLogger() *LoggerImpl {
	return defaultLogger.Load()
}

// SetDefaultLogger replaces the logger used by the package-level functions
func SetDefaultLogger(l *LoggerImpl) {
	defaultLogger.Store(l)
}

// GetLevel returns the level of the default logger
func GetLevel() Level {
	return GetLogger().GetLevel()
}

// IsTrace returns true if at least one logger is TRACE
func IsTrace() bool {
	return GetLevel() <= TRACE
}

// IsDebug returns true if at least one logger is DEBUG
func IsDebug() bool {
	return GetLevel() <= DEBUG
}

// Trace records trace log
func Trace(format string, v ...any) {
	Log(1, TRACE, format, v...)
}

// Debug records debug log
func Debug(format string, v ...any) {
	Log(1, DEBUG, format, v...)
}

// Info records info log
func Info(format string, v ...any) {
	Log(1, INFO, format, v...)
}

// Warn records warning log
func Warn(format string, v ...any) {
	Log(1, WARN, format, v...)
}

// Error records error log
func Error(format string, v ...any) {
	Log(1, ERROR, format, v...)
}

// Critical records critical log
func Critical(format string, v ...any) {
	Log(1, ERROR, format, v...)
}

// Fatal records fatal log and exit process
func Fatal(format string, v ...any) {
	Log(1, FATAL, format, v...)
	os.Exit(1)
}

// Log a message with defined skip and at logging level
func Log(skip int, level Level, format string, v ...any) {
	GetLogger().Log(skip+1, level, format, v...)
}
