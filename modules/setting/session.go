// Copyright 2019 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package setting

import (
	"net/http"
	"path/filepath"
	"strings"

	"code.gitea.io/sessionvars/modules/log"
)

// Session mechanisms issuing the session identity
const (
	SessionHostChi     = "chi"     // gitea.com/go-chi/session, server side store + id cookie
	SessionHostGorilla = "gorilla" // github.com/gorilla/sessions signed cookie
)

// Where session variables are stored
const (
	VariablesStorageSession = "session" // inside the go-chi session itself
	VariablesStorageMemory  = "memory"
	VariablesStorageRedis   = "redis"
	VariablesStorageCache   = "cache"
)

// SessionConfig defines Session settings
var SessionConfig = struct {
	// Host selects the session mechanism, chi or gorilla
	Host string
	// SecretKey signs the gorilla session cookie, a random key is used when it is empty
	SecretKey string
	// Provider is the go-chi session provider that issues the session identity (cookie)
	Provider string
	// ProviderConfig is the provider configuration, for file: the directory
	ProviderConfig string
	// CookieName is the cookie name to store the session ID
	CookieName string
	// CookiePath is the path of the session cookie
	CookiePath string
	// Gclifetime is the GC interval in seconds
	Gclifetime int64
	// Maxlifetime is the max life time in seconds
	Maxlifetime int64
	// Secure sets the Secure flag on the cookie
	Secure bool
	// Domain is the cookie domain
	Domain string
	SameSite http.SameSite

	// VariablesStorage selects the backend holding session variables
	VariablesStorage string
	// VariablesConn is the redis connection string or the memcache host
	VariablesConn string
	// VariablesCacheAdapter is the go-chi cache adapter when VariablesStorage is "cache"
	VariablesCacheAdapter string
	// KeyPrefix is prepended to the session ID in shared backends
	KeyPrefix string
	// MemoryMaxSessions bounds the sessions of the memory storage, 0 is unlimited
	MemoryMaxSessions int
}{
	Host:                  SessionHostChi,
	CookieName:            "i_like_sessionvars",
	Gclifetime:            86400,
	Maxlifetime:           86400,
	SameSite:              http.SameSiteLaxMode,
	VariablesStorage:      VariablesStorageSession,
	VariablesCacheAdapter: "memory",
	KeyPrefix:             "sessionvars:",
}

func loadSessionFrom(rootCfg ConfigProvider) {
	sec := rootCfg.Section("session")
	SessionConfig.Host = sec.Key("HOST").In(SessionHostChi, []string{SessionHostChi, SessionHostGorilla})
	SessionConfig.SecretKey = sec.Key("SECRET_KEY").String()
	SessionConfig.Provider = sec.Key("PROVIDER").In("memory",
		[]string{"memory", "file"})
	SessionConfig.ProviderConfig = strings.Trim(sec.Key("PROVIDER_CONFIG").MustString(filepath.Join("data", "sessions")), "\" ")
	SessionConfig.CookieName = sec.Key("COOKIE_NAME").MustString("i_like_sessionvars")
	SessionConfig.CookiePath = sec.Key("COOKIE_PATH").MustString("/")
	SessionConfig.Secure = sec.Key("COOKIE_SECURE").MustBool(false)
	SessionConfig.Gclifetime = sec.Key("GC_INTERVAL_TIME").MustInt64(86400)
	SessionConfig.Maxlifetime = sec.Key("SESSION_LIFE_TIME").MustInt64(86400)
	SessionConfig.Domain = sec.Key("DOMAIN").String()
	samesiteString := sec.Key("SAME_SITE").In("lax", []string{"none", "lax", "strict"})
	switch strings.ToLower(samesiteString) {
	case "none":
		SessionConfig.SameSite = http.SameSiteNoneMode
	case "strict":
		SessionConfig.SameSite = http.SameSiteStrictMode
	default:
		SessionConfig.SameSite = http.SameSiteLaxMode
	}

	SessionConfig.VariablesStorage = sec.Key("VARIABLES_STORAGE").In(VariablesStorageSession,
		[]string{VariablesStorageSession, VariablesStorageMemory, VariablesStorageRedis, VariablesStorageCache})
	SessionConfig.VariablesConn = strings.Trim(sec.Key("VARIABLES_CONN").String(), "\" ")
	SessionConfig.VariablesCacheAdapter = sec.Key("VARIABLES_CACHE_ADAPTER").In("memory", []string{"memory", "memcache"})
	SessionConfig.KeyPrefix = sec.Key("KEY_PREFIX").MustString("sessionvars:")
	SessionConfig.MemoryMaxSessions = sec.Key("MEMORY_MAX_SESSIONS").MustInt(0)

	switch SessionConfig.VariablesStorage {
	case VariablesStorageRedis:
		if SessionConfig.VariablesConn == "" {
			SessionConfig.VariablesConn = "redis://127.0.0.1:6379/0"
		}
	case VariablesStorageCache:
		if SessionConfig.VariablesCacheAdapter == "memcache" && SessionConfig.VariablesConn == "" {
			SessionConfig.VariablesConn = "127.0.0.1:11211"
		}
	}

	if SessionConfig.Host == SessionHostGorilla && SessionConfig.SecretKey == "" {
		log.Warn("[session] SECRET_KEY is empty, gorilla session cookies will not survive a restart")
	}

	log.Info("Session Service Enabled: host=%s, provider=%s, variables=%s", SessionConfig.Host, SessionConfig.Provider, SessionConfig.VariablesStorage)
}
