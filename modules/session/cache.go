// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"fmt"

	"code.gitea.io/sessionvars/modules/json"

	mc "gitea.com/go-chi/cache"
	"github.com/google/uuid"

	_ "gitea.com/go-chi/cache/memcache" // memcache plugin for cache
)

// CacheProvider stores every session as one JSON document in a go-chi cache.
// Writes are read-modify-write, concurrent writers of one session may lose updates.
type CacheProvider struct {
	cache   mc.Cache
	prefix  string
	timeout int64
}

var _ Provider = (*CacheProvider)(nil)

// NewCacheProvider creates a CacheProvider, timeout is in seconds
func NewCacheProvider(cache mc.Cache, prefix string, timeout int64) *CacheProvider {
	return &CacheProvider{cache: cache, prefix: prefix, timeout: timeout}
}

// NewCacher creates the go-chi cache for the given adapter ("memory" or "memcache")
func NewCacher(adapter, conn string) (mc.Cache, error) {
	c, err := mc.NewCacher(mc.Options{
		Adapter:       adapter,
		AdapterConfig: conn,
		Interval:      60,
	})
	if err != nil {
		return nil, err
	}
	if err = c.Ping(); err != nil {
		return nil, err
	}
	return c, nil
}

// Open implements Provider
func (p *CacheProvider) Open(id string) (Backend, error) {
	if id == "" {
		id = uuid.NewString()
	}
	return &cacheBackend{provider: p, id: id}, nil
}

// Ping checks the cache connection
func (p *CacheProvider) Ping(_ context.Context) error {
	return p.cache.Ping()
}

type cacheBackend struct {
	provider *CacheProvider
	id       string
}

var (
	_ Backend     = (*cacheBackend)(nil)
	_ Regenerator = (*cacheBackend)(nil)
)

func (b *cacheBackend) key() string {
	return b.provider.prefix + b.id
}

func (b *cacheBackend) ID() string {
	return b.id
}

func (b *cacheBackend) Load() (map[string]any, error) {
	values := make(map[string]any)
	var raw []byte
	switch v := b.provider.cache.Get(b.key()).(type) {
	case nil:
		return values, nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return nil, fmt.Errorf("unexpected cached session type %T", v)
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (b *cacheBackend) put(values map[string]any) error {
	if len(values) == 0 {
		return b.Flush()
	}
	bs, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return b.provider.cache.Put(b.key(), string(bs), b.provider.timeout)
}

func (b *cacheBackend) Set(name string, value any) error {
	values, err := b.Load()
	if err != nil {
		return err
	}
	values[name] = value
	return b.put(values)
}

func (b *cacheBackend) Delete(name string) error {
	values, err := b.Load()
	if err != nil {
		return err
	}
	if _, ok := values[name]; !ok {
		return nil
	}
	delete(values, name)
	return b.put(values)
}

func (b *cacheBackend) Flush() error {
	if !b.provider.cache.IsExist(b.key()) {
		return nil
	}
	return b.provider.cache.Delete(b.key())
}

func (b *cacheBackend) Replace(values map[string]any) error {
	return b.put(values)
}

func (b *cacheBackend) Destroy() error {
	return b.Flush()
}

func (b *cacheBackend) Regenerate() error {
	if err := b.Flush(); err != nil {
		return err
	}
	b.id = uuid.NewString()
	return nil
}
