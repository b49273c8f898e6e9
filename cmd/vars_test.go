// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"errors"
	"testing"

	session_module "code.gitea.io/sessionvars/modules/session"
	"code.gitea.io/sessionvars/modules/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockProvider(t *testing.T, provider session_module.Provider, err error) {
	keepSettings(t)
	t.Cleanup(test.MockVariableValue(&newVariablesProvider, func(context.Context) (session_module.Provider, error) {
		return provider, err
	}))
}

func runVars(t *testing.T, args ...string) (runResult, error) {
	return runTestApp(NewMainApp(AppVersion{}), append([]string{"./sessionvars", "vars"}, args...)...)
}

func TestVarsCommands(t *testing.T) {
	provider := session_module.NewMemoryProvider()
	mockProvider(t, provider, nil)

	_, err := runVars(t, "set", "--id", "s1", "user", "alice")
	require.NoError(t, err)
	_, err = runVars(t, "set", "--id", "s1", "visits", "42")
	require.NoError(t, err)
	_, err = runVars(t, "set", "--id", "s1", "prefs", `{"theme":"dark"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"user":   "alice",
		"visits": float64(42),
		"prefs":  map[string]any{"theme": "dark"},
	}, provider.Variables("s1"))

	r, err := runVars(t, "list", "--id", "s1")
	require.NoError(t, err)
	assert.Equal(t, "prefs={\"theme\":\"dark\"}\nuser=\"alice\"\nvisits=42\n", r.Stdout)

	_, err = runVars(t, "set", "--id", "s1", "user.theme", "dark")
	require.NoError(t, err)
	r, err = runVars(t, "list", "--id", "s1", "--match", "user*")
	require.NoError(t, err)
	assert.Equal(t, "user=\"alice\"\n", r.Stdout)
	r, err = runVars(t, "list", "--id", "s1", "--match", "user.*")
	require.NoError(t, err)
	assert.Equal(t, "user.theme=\"dark\"\n", r.Stdout)
	_, err = runVars(t, "rm", "--id", "s1", "user.theme")
	require.NoError(t, err)

	r, err = runVars(t, "list", "--id", "s1", "--match", "[")
	assert.Error(t, err)
	assert.Contains(t, r.Stderr, "invalid --match pattern")

	r, err = runVars(t, "get", "--id", "s1", "user")
	require.NoError(t, err)
	assert.Equal(t, "\"alice\"\n", r.Stdout)

	r, err = runVars(t, "get", "--id", "s1", "missing")
	assert.Error(t, err)
	assert.Equal(t, 1, r.ExitCode)
	assert.Contains(t, r.Stderr, `session variable "missing" is not set`)

	_, err = runVars(t, "rm", "--id", "s1", "user")
	require.NoError(t, err)
	_, err = runVars(t, "rm", "--id", "s1", "user")
	require.NoError(t, err)
	assert.NotContains(t, provider.Variables("s1"), "user")

	_, err = runVars(t, "clear", "--id", "s1")
	require.NoError(t, err)
	assert.True(t, provider.Exist("s1"))
	assert.Empty(t, provider.Variables("s1"))

	_, err = runVars(t, "destroy", "--id", "s1")
	require.NoError(t, err)
	assert.False(t, provider.Exist("s1"))
}

func TestVarsCommandErrors(t *testing.T) {
	t.Run("SessionStorage", func(t *testing.T) {
		mockProvider(t, nil, nil)
		r, err := runVars(t, "list", "--id", "s1")
		assert.Error(t, err)
		assert.Contains(t, r.Stderr, "VARIABLES_STORAGE")
	})

	t.Run("InProcessStorage", func(t *testing.T) {
		cases := []struct {
			name   string
			config string
		}{
			{"Memory", "[session]\nVARIABLES_STORAGE = memory\n"},
			{"MemoryCache", "[session]\nVARIABLES_STORAGE = cache\nVARIABLES_CACHE_ADAPTER = memory\n"},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				provider := session_module.NewMemoryProvider()
				mockProvider(t, provider, nil)
				conf := writeConfig(t, c.config)
				r, err := runTestApp(NewMainApp(AppVersion{}), "./sessionvars", "-c", conf, "vars", "set", "--id", "s1", "user", "alice")
				assert.Error(t, err)
				assert.Contains(t, r.Stderr, "only live inside the web process")
				assert.False(t, provider.Exist("s1"))
			})
		}
	})

	t.Run("ProviderFailure", func(t *testing.T) {
		mockProvider(t, nil, errors.New("connection refused"))
		r, err := runVars(t, "clear", "--id", "s1")
		assert.Error(t, err)
		assert.Contains(t, r.Stderr, "connection refused")
	})

	t.Run("MissingArguments", func(t *testing.T) {
		mockProvider(t, session_module.NewMemoryProvider(), nil)

		_, err := runVars(t, "list")
		assert.Error(t, err)

		r, err := runVars(t, "set", "--id", "s1", "user")
		assert.Error(t, err)
		assert.Contains(t, r.Stderr, "usage: vars set")

		r, err = runVars(t, "get", "--id", "s1")
		assert.Error(t, err)
		assert.Contains(t, r.Stderr, "a variable name is required")
	})
}
