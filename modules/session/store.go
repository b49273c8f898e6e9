// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"code.gitea.io/sessionvars/modules/log"
	"code.gitea.io/sessionvars/modules/optional"
	"code.gitea.io/sessionvars/modules/util"
)

// ErrSessionDestroyed is returned by every mutation after DestroySession
var ErrSessionDestroyed = util.NewNotExistErrorf("session has been destroyed")

var (
	_ Storage  = (*VariableStore)(nil)
	_ Refiller = (*VariableStore)(nil)
)

// VariableStore mirrors the dictionary of a Backend.
// The backend is written first, the mirror only changes when the backend accepted the write.
type VariableStore struct {
	mu        sync.RWMutex
	backend   Backend
	variables map[string]any
	destroyed bool
}

// NewVariableStore copies the current content of backend into a new store
func NewVariableStore(backend Backend) (*VariableStore, error) {
	variables, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("unable to load session %q: %w", backend.ID(), err)
	}
	if variables == nil {
		variables = make(map[string]any)
	}
	return &VariableStore{
		backend:   backend,
		variables: variables,
	}, nil
}

// ID returns the id of the session currently backing the store
func (s *VariableStore) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend.ID()
}

// IsDestroyed reports whether DestroySession has been called
func (s *VariableStore) IsDestroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

// GetVariable implements Storage
func (s *VariableStore) GetVariable(name string) optional.Option[any] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return optional.FromMap(s.variables, name)
}

// GetAllVariables implements Storage, the returned map is a copy
func (s *VariableStore) GetAllVariables() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make(map[string]any, len(s.variables))
	maps.Copy(all, s.variables)
	return all
}

// SetVariable implements Storage
func (s *VariableStore) SetVariable(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSessionDestroyed
	}
	return s.setVariable(name, value)
}

func (s *VariableStore) setVariable(name string, value any) error {
	if err := s.backend.Set(name, value); err != nil {
		return fmt.Errorf("unable to set session variable %q: %w", name, err)
	}
	s.variables[name] = value
	log.Trace("Session[%s]: set variable %q", s.backend.ID(), name)
	return nil
}

// SetVariables implements Storage. Variables are written in name order and
// the first failure stops the loop, earlier writes are kept.
func (s *VariableStore) SetVariables(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSessionDestroyed
	}
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if err := s.setVariable(name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

// RemoveVariable implements Storage
func (s *VariableStore) RemoveVariable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSessionDestroyed
	}
	if err := s.backend.Delete(name); err != nil {
		return fmt.Errorf("unable to remove session variable %q: %w", name, err)
	}
	delete(s.variables, name)
	log.Trace("Session[%s]: removed variable %q", s.backend.ID(), name)
	return nil
}

// RemoveAllVariables implements Storage
func (s *VariableStore) RemoveAllVariables() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSessionDestroyed
	}
	if err := s.backend.Flush(); err != nil {
		return fmt.Errorf("unable to remove session variables: %w", err)
	}
	clear(s.variables)
	log.Trace("Session[%s]: removed all variables", s.backend.ID())
	return nil
}

// DestroySession implements Storage. Destroying twice is a no-op.
func (s *VariableStore) DestroySession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	id := s.backend.ID()
	if err := s.backend.Destroy(); err != nil {
		return fmt.Errorf("unable to destroy session %q: %w", id, err)
	}
	clear(s.variables)
	s.destroyed = true
	log.Debug("Session[%s]: destroyed", id)
	return nil
}

// RefillSession implements Refiller
func (s *VariableStore) RefillSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSessionDestroyed
	}
	return s.refill()
}

func (s *VariableStore) refill() error {
	if err := s.backend.Replace(maps.Clone(s.variables)); err != nil {
		return fmt.Errorf("unable to refill session %q: %w", s.backend.ID(), err)
	}
	return nil
}

// RegenerateSession asks the backend for a new session identity and refills
// the new session with the current variables.
func (s *VariableStore) RegenerateSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrSessionDestroyed
	}
	regenerator, ok := s.backend.(Regenerator)
	if !ok {
		return util.NewInvalidArgumentErrorf("session backend %T cannot regenerate its id", s.backend)
	}
	oldID := s.backend.ID()
	if err := regenerator.Regenerate(); err != nil {
		return fmt.Errorf("unable to regenerate session %q: %w", oldID, err)
	}
	if err := s.refill(); err != nil {
		return err
	}
	log.Debug("Session[%s]: regenerated as %s", oldID, s.backend.ID())
	return nil
}
