// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSilentWrap(t *testing.T) {
	err := NewNotExistErrorf("session %q not found", "abc")
	assert.Equal(t, `session "abc" not found`, err.Error())
	assert.ErrorIs(t, err, ErrNotExist)
	assert.NotErrorIs(t, err, ErrInvalidArgument)

	wrapped := fmt.Errorf("load: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotExist)

	err = NewInvalidArgumentErrorf("empty name")
	assert.Equal(t, "empty name", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestSilentWrapSentinel(t *testing.T) {
	sentinel := NewSilentWrapErrorf(ErrNotExist, "gone")
	assert.ErrorIs(t, fmt.Errorf("op: %w", sentinel), sentinel)
}
