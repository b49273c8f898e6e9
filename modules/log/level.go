// Copyright 2019 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package log

import (
	"strings"
)

// Level is the level of the logger
type Level int

const (
	UNDEFINED Level = iota
	TRACE
	DEBUG
	INFO
	WARN
	ERROR
	FATAL
	NONE
)

// CRITICAL is kept as an alias, the service has no use for a separate level
const CRITICAL = ERROR

var levelNames = [...]string{
	UNDEFINED: "undefined",
	TRACE:     "trace",
	DEBUG:     "debug",
	INFO:      "info",
	WARN:      "warn",
	ERROR:     "error",
	FATAL:     "fatal",
	NONE:      "none",
}

func (l Level) String() string {
	if l < UNDEFINED || int(l) >= len(levelNames) {
		return "info"
	}
	return levelNames[l]
}

// initial is the one-letter tag written in front of a message
func (l Level) initial() string {
	return strings.ToUpper(l.String()[:1])
}

// MarshalText writes the level by name, used by JSON and ini
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText reads a level name, unknown names become INFO
func (l *Level) UnmarshalText(b []byte) error {
	*l = LevelFromString(string(b))
	return nil
}

// LevelFromString takes a level string and returns a Level, "warning" is accepted for WARN
func LevelFromString(level string) Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return WARN
	}
	for l, name := range levelNames {
		if name == level {
			return Level(l)
		}
	}
	return INFO
}
