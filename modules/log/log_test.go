// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"strings"
	"testing"

	"code.gitea.io/sessionvars/modules/json"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogString struct {
	Field string
}

func (t testLogString) LogString() string {
	return "log-string<" + t.Field + ">"
}

func TestLoggerLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLoggerWithWriter("test", buf, INFO)

	logger.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	logger.Info("shown %d", 2)
	assert.Contains(t, buf.String(), "[I] shown 2")
	assert.Contains(t, buf.String(), "log_test.go:")

	assert.True(t, logger.LevelEnabled(WARN))
	assert.False(t, logger.LevelEnabled(DEBUG))
}

func TestLoggerLogStringer(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLoggerWithWriter("test", buf, TRACE)
	logger.Trace("value: %v", testLogString{Field: "x"})
	assert.Contains(t, buf.String(), "[T] value: log-string<x>")
}

func TestLoggerNoSpoofing(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLoggerWithWriter("test", buf, INFO)
	logger.SetPrefix("[sv] ")
	logger.Error("first\nsecond\n")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[sv] "))
	assert.Contains(t, out, "first\n        second\n")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestDefaultLogger(t *testing.T) {
	old := GetLogger()
	defer SetDefaultLogger(old)

	buf := &bytes.Buffer{}
	SetDefaultLogger(NewLoggerWithWriter("test", buf, DEBUG))
	assert.True(t, IsDebug())
	assert.False(t, IsTrace())

	Trace("nope")
	Warn("careful %s", "now")
	assert.NotContains(t, buf.String(), "nope")
	assert.Contains(t, buf.String(), "[W] careful now")
	assert.Contains(t, buf.String(), "log_test.go:")
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, WARN, LevelFromString("Warning"))
	assert.Equal(t, TRACE, LevelFromString("TRACE"))
	assert.Equal(t, INFO, LevelFromString("bogus"))
	assert.Equal(t, "info", Level(100).String())
	assert.Equal(t, "W", WARN.initial())
}

func TestLevelJSON(t *testing.T) {
	bs, err := json.Marshal(ERROR)
	require.NoError(t, err)
	assert.Equal(t, `"error"`, string(bs))

	var l Level
	require.NoError(t, json.Unmarshal([]byte(`"debug"`), &l))
	assert.Equal(t, DEBUG, l)

	require.NoError(t, json.Unmarshal([]byte(`"nonsense"`), &l))
	assert.Equal(t, INFO, l)
}
