// Copyright 2020 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package nosql

import (
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	manager     *Manager
	managerOnce sync.Once
)

// Manager shares redis clients between the users of the same connection string
type Manager struct {
	mutex sync.Mutex

	// RedisConnections is keyed by the connection string as given and by its normalized URI
	RedisConnections map[string]*redisClientHolder
}

// redisClientHolder counts the users of a client, Close only closes the last one
type redisClientHolder struct {
	redis.UniversalClient
	names []string
	count int64
}

func (r *redisClientHolder) Close() error {
	return GetManager().CloseRedisClient(r.names[0])
}

// GetManager returns the process wide Manager
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{RedisConnections: make(map[string]*redisClientHolder)}
	})
	return manager
}

// parseDuration accepts a Go duration ("30s") or a plain number of nanoseconds
func parseDuration(v string) time.Duration {
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	n, _ := strconv.ParseInt(v, 10, 64)
	return time.Duration(n)
}
