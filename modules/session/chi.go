// Copyright 2020 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"errors"
	"net/http"
	"slices"

	"code.gitea.io/sessionvars/modules/util"

	"gitea.com/go-chi/session"
)

// NewRequestHost returns the Host of a request served behind session.Sessioner
func NewRequestHost(resp http.ResponseWriter, req *http.Request) Host {
	return &requestHost{resp: resp, req: req}
}

type requestHost struct {
	resp http.ResponseWriter
	req  *http.Request
}

func (h *requestHost) store() (session.Store, error) {
	sess := session.GetSession(h.req)
	if sess == nil {
		return nil, errors.New("no go-chi session in request, is the Sessioner middleware installed?")
	}
	return sess, nil
}

func (h *requestHost) RawStore() (RawStore, error) {
	return h.store()
}

// Destroy empties the raw store first: go-chi releases it after the handler
// returns, and the file provider would write a non-empty store back.
func (h *requestHost) Destroy() error {
	sess, err := h.store()
	if err != nil {
		return err
	}
	if err := sess.Flush(); err != nil {
		return err
	}
	return sess.Destroy(h.resp, h.req)
}

func (h *requestHost) Regenerate() (RawStore, error) {
	return session.RegenerateSession(h.resp, h.req)
}

// chiNamesKey holds the sorted names of the variables, a RawStore cannot enumerate its keys
const chiNamesKey = "_sessionvars_names"

// ChiBackend stores the variables directly in the raw store of the host session
type ChiBackend struct {
	host Host
	raw  RawStore
}

var (
	_ Backend     = (*ChiBackend)(nil)
	_ Regenerator = (*ChiBackend)(nil)
)

// NewChiBackend binds a backend to the current session of host
func NewChiBackend(host Host) (*ChiBackend, error) {
	raw, err := host.RawStore()
	if err != nil {
		return nil, err
	}
	return &ChiBackend{host: host, raw: raw}, nil
}

func (b *ChiBackend) names() []string {
	names, _ := b.raw.Get(chiNamesKey).([]string)
	return names
}

func (b *ChiBackend) setNames(names []string) error {
	if len(names) == 0 {
		return b.raw.Delete(chiNamesKey)
	}
	return b.raw.Set(chiNamesKey, names)
}

func (b *ChiBackend) ID() string {
	return b.raw.ID()
}

func (b *ChiBackend) Load() (map[string]any, error) {
	names := b.names()
	values := make(map[string]any, len(names))
	for _, name := range names {
		values[name] = b.raw.Get(name)
	}
	return values, nil
}

func (b *ChiBackend) Set(name string, value any) error {
	if name == chiNamesKey {
		return util.NewInvalidArgumentErrorf("session variable name %q is reserved", name)
	}
	if err := b.raw.Set(name, value); err != nil {
		return err
	}
	names := b.names()
	if idx, found := slices.BinarySearch(names, name); !found {
		return b.setNames(slices.Insert(slices.Clone(names), idx, name))
	}
	return nil
}

func (b *ChiBackend) Delete(name string) error {
	names := b.names()
	idx, found := slices.BinarySearch(names, name)
	if !found {
		return nil
	}
	if err := b.raw.Delete(name); err != nil {
		return err
	}
	return b.setNames(slices.Delete(slices.Clone(names), idx, idx+1))
}

func (b *ChiBackend) Flush() error {
	return b.raw.Flush()
}

func (b *ChiBackend) Replace(values map[string]any) error {
	if _, ok := values[chiNamesKey]; ok {
		return util.NewInvalidArgumentErrorf("session variable name %q is reserved", chiNamesKey)
	}
	if err := b.raw.Flush(); err != nil {
		return err
	}
	names := make([]string, 0, len(values))
	for name, value := range values {
		if err := b.raw.Set(name, value); err != nil {
			return err
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return b.setNames(names)
}

func (b *ChiBackend) Destroy() error {
	return b.host.Destroy()
}

// Regenerate implements Regenerator. Hosts may carry the old data over to the
// new id, it is flushed so the new session starts empty.
func (b *ChiBackend) Regenerate() error {
	raw, err := b.host.Regenerate()
	if err != nil {
		return err
	}
	b.raw = raw
	return raw.Flush()
}
