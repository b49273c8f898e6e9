// Copyright 2014 The Gogs Authors. All rights reserved.
// Copyright 2017 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package setting

import (
	"net"

	"code.gitea.io/sessionvars/modules/log"
)

var (
	// CustomConf is the config file path, set by the --config flag
	CustomConf = "custom/conf/app.ini"

	AppName  string
	HTTPAddr string
	HTTPPort string

	// LogLevel is the minimal level the default logger writes
	LogLevel log.Level

	// CfgProvider is the provider the current settings were loaded from
	CfgProvider ConfigProvider
)

// LoadSettings loads every section used by the service from rootCfg
func LoadSettings(rootCfg ConfigProvider) {
	CfgProvider = rootCfg
	loadLogFrom(rootCfg)
	loadServerFrom(rootCfg)
	loadSecurityFrom(rootCfg)
	loadSessionFrom(rootCfg)
	loadCorsFrom(rootCfg)
}

// InitCfgProvider loads CustomConf and applies it
func InitCfgProvider(file string) error {
	cfg, err := NewConfigProviderFromFile(file)
	if err != nil {
		return err
	}
	CustomConf = file
	LoadSettings(cfg)
	return nil
}

func loadServerFrom(rootCfg ConfigProvider) {
	sec := rootCfg.Section("server")
	AppName = rootCfg.Section("").Key("APP_NAME").MustString("Session Variables")
	HTTPAddr = sec.Key("HTTP_ADDR").MustString("0.0.0.0")
	HTTPPort = sec.Key("HTTP_PORT").MustString("3000")
}

func loadLogFrom(rootCfg ConfigProvider) {
	sec := rootCfg.Section("log")
	LogLevel = log.LevelFromString(sec.Key("LEVEL").MustString("Info"))
	log.GetLogger().SetLevel(LogLevel)
}

// ListenAddr returns the address the web server listens on
func ListenAddr() string {
	return net.JoinHostPort(HTTPAddr, HTTPPort)
}
