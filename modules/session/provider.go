// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"fmt"
	"time"

	"code.gitea.io/sessionvars/modules/log"
	"code.gitea.io/sessionvars/modules/nosql"
	"code.gitea.io/sessionvars/modules/setting"
	"code.gitea.io/sessionvars/modules/util"
)

// NewProviderFromSetting creates the Provider selected by setting.SessionConfig.
// It returns a nil Provider when the variables are kept in the go-chi session.
func NewProviderFromSetting(ctx context.Context) (Provider, error) {
	cfg := setting.SessionConfig
	lifetime := time.Duration(cfg.Maxlifetime) * time.Second

	switch cfg.VariablesStorage {
	case setting.VariablesStorageSession:
		return nil, nil
	case setting.VariablesStorageMemory:
		return NewExpiringMemoryProvider(cfg.MemoryMaxSessions, lifetime), nil
	case setting.VariablesStorageRedis:
		client := nosql.GetManager().GetRedisClient(cfg.VariablesConn)
		if client == nil {
			return nil, util.NewInvalidArgumentErrorf("invalid redis connection %q", cfg.VariablesConn)
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("unable to connect to redis: %w", err)
		}
		log.Info("Session variables are stored in redis")
		return NewRedisProvider(ctx, client, cfg.KeyPrefix, lifetime), nil
	case setting.VariablesStorageCache:
		cache, err := NewCacher(cfg.VariablesCacheAdapter, cfg.VariablesConn)
		if err != nil {
			return nil, fmt.Errorf("unable to create %s cache: %w", cfg.VariablesCacheAdapter, err)
		}
		log.Info("Session variables are stored in %s cache", cfg.VariablesCacheAdapter)
		return NewCacheProvider(cache, cfg.KeyPrefix, cfg.Maxlifetime), nil
	}
	return nil, util.NewInvalidArgumentErrorf("unknown session variables storage %q", cfg.VariablesStorage)
}
