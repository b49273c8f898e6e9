// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openGorillaStore(t *testing.T, store sessions.Store, provider Provider, cookies ...*http.Cookie) (*VariableStore, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	host, err := NewGorillaHost(store, "sessionvars", resp, req)
	require.NoError(t, err)
	backend, err := OpenBackend(provider, host)
	require.NoError(t, err)
	vs, err := NewVariableStore(backend)
	require.NoError(t, err)
	return vs, resp
}

func TestGorillaHostCookieRoundTrip(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))

	vs, resp := openGorillaStore(t, store, nil)
	require.NoError(t, vs.SetVariable("user", "alice"))
	require.NoError(t, vs.SetVariables(map[string]any{
		"prefs":  map[string]any{"theme": "dark"},
		"visits": float64(2),
	}))
	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	id := vs.ID()
	assert.NotEmpty(t, id)

	vs, resp = openGorillaStore(t, store, nil, cookies...)
	assert.Equal(t, id, vs.ID())
	assert.Equal(t, map[string]any{
		"user":   "alice",
		"prefs":  map[string]any{"theme": "dark"},
		"visits": float64(2),
	}, vs.GetAllVariables())

	require.NoError(t, vs.RegenerateSession())
	assert.NotEqual(t, id, vs.ID())
	assert.Equal(t, "alice", vs.GetVariable("user").Value())

	require.NoError(t, vs.DestroySession())
	cookies = resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestGorillaHostWithProvider(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	provider := NewMemoryProvider()

	vs, resp := openGorillaStore(t, store, provider)
	require.NoError(t, vs.SetVariable("user", "alice"))
	id := vs.ID()
	assert.Equal(t, map[string]any{"user": "alice"}, provider.Variables(id))

	// the cookie only carries the id
	vs, _ = openGorillaStore(t, store, provider, resp.Result().Cookies()...)
	assert.Equal(t, id, vs.ID())
	assert.Equal(t, "alice", vs.GetVariable("user").Value())
}

func TestGorillaHostBadCookie(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	vs, _ := openGorillaStore(t, store, nil, &http.Cookie{Name: "sessionvars", Value: "forged"})
	assert.NotEmpty(t, vs.ID())
	assert.Empty(t, vs.GetAllVariables())
}

func TestGorillaHostReservedKey(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	host, err := NewGorillaHost(store, "sessionvars", httptest.NewRecorder(), req)
	require.NoError(t, err)
	raw, err := host.RawStore()
	require.NoError(t, err)
	assert.Error(t, raw.Set(gorillaIDKey, "other"))
	assert.Nil(t, raw.Get(gorillaIDKey))
	assert.NotEmpty(t, raw.ID())
}

func TestGorillaHostKeepsOtherCookies(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	http.SetCookie(resp, &http.Cookie{Name: "lang", Value: "en-US"})
	http.SetCookie(resp, &http.Cookie{Name: "sessionvars_hint", Value: "1"})

	host, err := NewGorillaHost(store, "sessionvars", resp, req)
	require.NoError(t, err)
	raw, err := host.RawStore()
	require.NoError(t, err)
	require.NoError(t, raw.Set("user", "alice"))
	require.NoError(t, raw.Set("role", "admin"))

	names := make([]string, 0, 3)
	for _, c := range resp.Result().Cookies() {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"lang", "sessionvars_hint", "sessionvars"}, names)
}
