// Copyright 2023 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package log provides leveled logging for the session variable service.
//
// The package-level functions (log.Info, log.Error, ...) use the default
// logger, which writes to stderr until SetDefaultLogger replaces it.
package log

// Logger is implemented by LoggerImpl, packages that accept a logger should take this interface
type Logger interface {
	Log(skip int, level Level, format string, v ...any)
	GetLevel() Level
	LevelEnabled(level Level) bool

	Trace(format string, v ...any)
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// LogStringer is used by arguments which should be logged differently from their String()
type LogStringer interface { //nolint:revive
	LogString() string
}
