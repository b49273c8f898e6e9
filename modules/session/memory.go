// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryProvider keeps the dictionaries of all sessions in process memory.
// Sessions expire ttl after their last write, the least recently used ones
// are dropped once there are more than maxSessions.
type MemoryProvider struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, map[string]any]
}

var _ Provider = (*MemoryProvider)(nil)

// NewMemoryProvider creates an unbounded MemoryProvider whose sessions never expire
func NewMemoryProvider() *MemoryProvider {
	return NewExpiringMemoryProvider(0, 0)
}

// NewExpiringMemoryProvider creates a MemoryProvider, zero maxSessions or ttl disables the limit
func NewExpiringMemoryProvider(maxSessions int, ttl time.Duration) *MemoryProvider {
	return &MemoryProvider{sessions: expirable.NewLRU[string, map[string]any](maxSessions, nil, ttl)}
}

// Open implements Provider
func (p *MemoryProvider) Open(id string) (Backend, error) {
	if id == "" {
		id = uuid.NewString()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.sessions.Contains(id) {
		p.sessions.Add(id, make(map[string]any))
	}
	return &memoryBackend{provider: p, id: id}, nil
}

// Exist reports whether the session id is alive
func (p *MemoryProvider) Exist(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessions.Contains(id)
}

// Count returns the number of alive sessions
func (p *MemoryProvider) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessions.Len()
}

// Variables returns a copy of the dictionary of a session, nil if it does not exist
func (p *MemoryProvider) Variables(id string) map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, _ := p.sessions.Peek(id)
	return maps.Clone(d)
}

type memoryBackend struct {
	provider *MemoryProvider
	id       string
}

var (
	_ Backend     = (*memoryBackend)(nil)
	_ Regenerator = (*memoryBackend)(nil)
)

// dict must be called with the provider lock held, an expired or destroyed session is recreated empty
func (b *memoryBackend) dict() map[string]any {
	d, ok := b.provider.sessions.Peek(b.id)
	if !ok {
		d = make(map[string]any)
	}
	return d
}

// store saves d and restarts the expiry of the session
func (b *memoryBackend) store(d map[string]any) {
	b.provider.sessions.Add(b.id, d)
}

func (b *memoryBackend) ID() string {
	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()
	return b.id
}

func (b *memoryBackend) Load() (map[string]any, error) {
	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()
	return maps.Clone(b.dict()), nil
}

func (b *memoryBackend) Set(name string, value any) error {
	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()
	d := b.dict()
	d[name] = value
	b.store(d)
	return nil
}

func (b *memoryBackend) Delete(name string) error {
	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()
	d := b.dict()
	delete(d, name)
	b.store(d)
	return nil
}

func (b *memoryBackend) Flush() error {
	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()
	b.store(make(map[string]any))
	return nil
}

func (b *memoryBackend) Replace(values map[string]any) error {
	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()
	d := maps.Clone(values)
	if d == nil {
		d = make(map[string]any)
	}
	b.store(d)
	return nil
}

func (b *memoryBackend) Destroy() error {
	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()
	b.provider.sessions.Remove(b.id)
	return nil
}

func (b *memoryBackend) Regenerate() error {
	b.provider.mu.Lock()
	defer b.provider.mu.Unlock()
	b.provider.sessions.Remove(b.id)
	b.id = uuid.NewString()
	b.store(make(map[string]any))
	return nil
}
