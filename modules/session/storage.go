// Copyright 2020 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package session keeps a local mirror of the variables of the current
// session and writes every change through to the backend holding them.
package session

import (
	"code.gitea.io/sessionvars/modules/optional"
)

// Storage is the contract of a session variable store
type Storage interface {
	// GetVariable returns None when the variable is not set
	GetVariable(name string) optional.Option[any]
	GetAllVariables() map[string]any
	SetVariable(name string, value any) error
	SetVariables(values map[string]any) error
	// RemoveVariable does nothing when the variable is not set
	RemoveVariable(name string) error
	RemoveAllVariables() error
	// DestroySession ends the session itself, not only its data
	DestroySession() error
}

// Refiller is implemented by stores that can write their mirror back to the
// backend, which is needed after the backend lost its data to an id regeneration.
type Refiller interface {
	RefillSession() error
}

// Backend is the session mechanism of the host, a dictionary scoped to one session id.
// Delete and Flush must not fail on absent data.
type Backend interface {
	ID() string
	// Load returns a copy of the whole dictionary, the caller owns the map
	Load() (map[string]any, error)
	Set(name string, value any) error
	Delete(name string) error
	Flush() error
	// Replace overwrites the whole dictionary with values
	Replace(values map[string]any) error
	// Destroy invalidates the session identity
	Destroy() error
}

// Regenerator is implemented by backends that can issue a new session identity.
// After Regenerate the backend is bound to the new id and its dictionary is empty.
type Regenerator interface {
	Regenerate() error
}

// Provider opens the backend of a session id, an empty id starts a new session
type Provider interface {
	Open(id string) (Backend, error)
}
