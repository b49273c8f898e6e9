// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"errors"
	"fmt"
)

// RawStore is the dictionary of the host session, the part of a go-chi session store the backends need
type RawStore interface {
	Get(any) any
	Set(any, any) error
	Delete(any) error
	ID() string
	Flush() error
}

// Host is the session mechanism of a request, it owns the session identity and the cookie
type Host interface {
	RawStore() (RawStore, error)
	Destroy() error
	Regenerate() (RawStore, error)
}

// HostBackend keeps the variables in a Provider under the id of the host
// session, so the cookie handling stays with go-chi or gorilla.
type HostBackend struct {
	Backend
	provider Provider
	host     Host
}

var _ Regenerator = (*HostBackend)(nil)

// NewHostBackend opens the provider backend of the current host session
func NewHostBackend(provider Provider, host Host) (*HostBackend, error) {
	raw, err := host.RawStore()
	if err != nil {
		return nil, err
	}
	backend, err := provider.Open(raw.ID())
	if err != nil {
		return nil, fmt.Errorf("unable to open session %q: %w", raw.ID(), err)
	}
	return &HostBackend{Backend: backend, provider: provider, host: host}, nil
}

// Destroy drops the variables and destroys the host session
func (b *HostBackend) Destroy() error {
	return errors.Join(b.Backend.Destroy(), b.host.Destroy())
}

// Regenerate issues a new host session id and moves to an empty provider dictionary under it
func (b *HostBackend) Regenerate() error {
	raw, err := b.host.Regenerate()
	if err != nil {
		return err
	}
	if err := b.Backend.Destroy(); err != nil {
		return err
	}
	backend, err := b.provider.Open(raw.ID())
	if err != nil {
		return fmt.Errorf("unable to open session %q: %w", raw.ID(), err)
	}
	if err := backend.Flush(); err != nil {
		return err
	}
	b.Backend = backend
	return nil
}

// OpenBackend returns the backend of the request session: the host session
// itself when provider is nil, otherwise the provider keyed by the host session id.
func OpenBackend(provider Provider, host Host) (Backend, error) {
	if provider == nil {
		return NewChiBackend(host)
	}
	return NewHostBackend(provider, host)
}
