// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"time"

	"code.gitea.io/sessionvars/modules/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisProvider stores every session as a redis hash, one JSON encoded field per variable
type RedisProvider struct {
	ctx    context.Context
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ Provider = (*RedisProvider)(nil)

// NewRedisProvider creates a RedisProvider, ttl is refreshed on every write, zero disables expiry
func NewRedisProvider(ctx context.Context, client redis.UniversalClient, prefix string, ttl time.Duration) *RedisProvider {
	return &RedisProvider{ctx: ctx, client: client, prefix: prefix, ttl: ttl}
}

// Open implements Provider
func (p *RedisProvider) Open(id string) (Backend, error) {
	if id == "" {
		id = uuid.NewString()
	}
	return &redisBackend{provider: p, id: id}, nil
}

// Exist reports whether the session has any variable stored
func (p *RedisProvider) Exist(id string) (bool, error) {
	n, err := p.client.Exists(p.ctx, p.prefix+id).Result()
	return n > 0, err
}

// Ping checks the redis connection
func (p *RedisProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

type redisBackend struct {
	provider *RedisProvider
	id       string
}

var (
	_ Backend     = (*redisBackend)(nil)
	_ Regenerator = (*redisBackend)(nil)
)

func (b *redisBackend) key() string {
	return b.provider.prefix + b.id
}

func (b *redisBackend) expire(pipe redis.Pipeliner) {
	if b.provider.ttl > 0 {
		pipe.Expire(b.provider.ctx, b.key(), b.provider.ttl)
	}
}

func (b *redisBackend) ID() string {
	return b.id
}

func (b *redisBackend) Load() (map[string]any, error) {
	fields, err := b.provider.client.HGetAll(b.provider.ctx, b.key()).Result()
	if err != nil {
		return nil, err
	}
	return json.UnmarshalValues(fields)
}

func (b *redisBackend) Set(name string, value any) error {
	bs, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = b.provider.client.TxPipelined(b.provider.ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(b.provider.ctx, b.key(), name, string(bs))
		b.expire(pipe)
		return nil
	})
	return err
}

func (b *redisBackend) Delete(name string) error {
	return b.provider.client.HDel(b.provider.ctx, b.key(), name).Err()
}

func (b *redisBackend) Flush() error {
	return b.provider.client.Del(b.provider.ctx, b.key()).Err()
}

func (b *redisBackend) Replace(values map[string]any) error {
	fields, err := json.MarshalValues(values)
	if err != nil {
		return err
	}
	_, err = b.provider.client.TxPipelined(b.provider.ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(b.provider.ctx, b.key())
		if len(fields) > 0 {
			pipe.HSet(b.provider.ctx, b.key(), fields)
			b.expire(pipe)
		}
		return nil
	})
	return err
}

func (b *redisBackend) Destroy() error {
	return b.Flush()
}

func (b *redisBackend) Regenerate() error {
	if err := b.Flush(); err != nil {
		return err
	}
	b.id = uuid.NewString()
	return nil
}
