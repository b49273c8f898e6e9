// Copyright 2025 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalValues(t *testing.T) {
	fields, err := MarshalValues(map[string]any{
		"user":  "alice",
		"count": 2,
		"flag":  false,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"user":  `"alice"`,
		"count": "2",
		"flag":  "false",
	}, fields)

	values, err := UnmarshalValues(map[string]string{
		"user":  `"alice"`,
		"count": "2",
		"flag":  "false",
		"list":  `["a","b"]`,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", values["user"])
	assert.InDelta(t, 2.0, values["count"], 0)
	assert.Equal(t, false, values["flag"])
	assert.Equal(t, []any{"a", "b"}, values["list"])
}

func TestUnmarshalValuesInvalid(t *testing.T) {
	_, err := UnmarshalValues(map[string]string{"broken": "{"})
	assert.Error(t, err)
}

func TestMarshalIndent(t *testing.T) {
	bs, err := MarshalIndent(map[string]int{"a": 1}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(bs))
}
