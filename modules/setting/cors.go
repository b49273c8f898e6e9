// Copyright 2022 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package setting

import (
	"time"

	"code.gitea.io/sessionvars/modules/log"
)

// CORSConfig defines CORS settings of the session API
var CORSConfig = struct {
	Enabled          bool
	AllowDomain      []string // allowed origins
	Methods          []string
	MaxAge           time.Duration
	AllowCredentials bool
	Headers          []string
}{
	AllowDomain: []string{"*"},
	Methods:     []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	Headers:     []string{"Content-Type", "User-Agent"},
	MaxAge:      10 * time.Minute,
}

func loadCorsFrom(rootCfg ConfigProvider) {
	if err := rootCfg.Section("cors").MapTo(&CORSConfig); err != nil {
		log.Fatal("Failed to map cors settings: %v", err)
	}
	if CORSConfig.Enabled {
		log.Info("CORS Service Enabled")
	}
}
