// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"fmt"
	"testing"

	"code.gitea.io/sessionvars/modules/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRawStore struct {
	id   string
	data map[any]any
}

func newFakeRawStore(id string) *fakeRawStore {
	return &fakeRawStore{id: id, data: make(map[any]any)}
}

func (s *fakeRawStore) Get(key any) any { return s.data[key] }

func (s *fakeRawStore) Set(key, value any) error {
	s.data[key] = value
	return nil
}

func (s *fakeRawStore) Delete(key any) error {
	delete(s.data, key)
	return nil
}

func (s *fakeRawStore) ID() string { return s.id }

func (s *fakeRawStore) Flush() error {
	clear(s.data)
	return nil
}

// fakeChiHost behaves like go-chi: regeneration carries the data over to the new id
type fakeChiHost struct {
	raw         *fakeRawStore
	destroyed   []string
	regenerated int
}

func (h *fakeChiHost) RawStore() (RawStore, error) {
	return h.raw, nil
}

func (h *fakeChiHost) Destroy() error {
	h.destroyed = append(h.destroyed, h.raw.id)
	h.raw = newFakeRawStore("")
	return nil
}

func (h *fakeChiHost) Regenerate() (RawStore, error) {
	h.regenerated++
	h.raw.id = fmt.Sprintf("regenerated-%d", h.regenerated)
	return h.raw, nil
}

func TestChiBackend(t *testing.T) {
	host := &fakeChiHost{raw: newFakeRawStore("sid")}
	host.raw.data["user"] = "ignored, not in the index"

	backend, err := NewChiBackend(host)
	require.NoError(t, err)
	assert.Equal(t, "sid", backend.ID())

	values, err := backend.Load()
	require.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, backend.Set("b", 2))
	require.NoError(t, backend.Set("a", 1))
	require.NoError(t, backend.Set("a", 10))
	assert.Equal(t, []string{"a", "b"}, host.raw.data[chiNamesKey])

	values, err = backend.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 10, "b": 2}, values)

	require.NoError(t, backend.Delete("missing"))
	require.NoError(t, backend.Delete("a"))
	assert.Equal(t, []string{"b"}, host.raw.data[chiNamesKey])
	require.NoError(t, backend.Delete("b"))
	assert.NotContains(t, host.raw.data, chiNamesKey)

	err = backend.Set(chiNamesKey, "x")
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
}

func TestChiBackendReplaceAndFlush(t *testing.T) {
	host := &fakeChiHost{raw: newFakeRawStore("sid")}
	backend, err := NewChiBackend(host)
	require.NoError(t, err)

	require.NoError(t, backend.Set("old", true))
	require.NoError(t, backend.Replace(map[string]any{"x": 1, "y": nil}))
	values, err := backend.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1, "y": nil}, values)

	require.NoError(t, backend.Flush())
	values, err = backend.Load()
	require.NoError(t, err)
	assert.Empty(t, values)

	assert.ErrorIs(t, backend.Replace(map[string]any{chiNamesKey: 1}), util.ErrInvalidArgument)
}

func TestVariableStoreOnChiBackend(t *testing.T) {
	host := &fakeChiHost{raw: newFakeRawStore("sid")}
	backend, err := NewChiBackend(host)
	require.NoError(t, err)
	require.NoError(t, backend.Set("user", "alice"))

	store, err := NewVariableStore(backend)
	require.NoError(t, err)
	assert.Equal(t, "alice", store.GetVariable("user").Value())

	require.NoError(t, store.RegenerateSession())
	assert.Equal(t, "regenerated-1", store.ID())
	assert.Equal(t, "alice", host.raw.data["user"])
	assert.Equal(t, []string{"user"}, host.raw.data[chiNamesKey])

	require.NoError(t, store.DestroySession())
	assert.Equal(t, []string{"regenerated-1"}, host.destroyed)
	assert.Empty(t, store.GetAllVariables())
}
