// Copyright 2020 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package nosql

import (
	"crypto/tls"
	"net/url"
	"path"
	"strconv"
	"strings"

	"code.gitea.io/sessionvars/modules/log"

	"github.com/redis/go-redis/v9"
)

var replacer = strings.NewReplacer("_", "", "-", "")

// CloseRedisClient closes a redis client
func (m *Manager) CloseRedisClient(connection string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	client, ok := m.RedisConnections[connection]
	if !ok {
		connection = ToRedisURI(connection).String()
		client, ok = m.RedisConnections[connection]
	}
	if !ok {
		return nil
	}

	client.count--
	if client.count > 0 {
		return nil
	}

	for _, name := range client.names {
		delete(m.RedisConnections, name)
	}
	return client.UniversalClient.Close()
}

// GetRedisClient gets a redis client for a particular connection, clients are shared and reference counted
func (m *Manager) GetRedisClient(connection string) redis.UniversalClient {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	client, ok := m.RedisConnections[connection]
	if ok {
		client.count++
		return client
	}

	uri := ToRedisURI(connection)
	client, ok = m.RedisConnections[uri.String()]
	if ok {
		client.count++
		return client
	}
	client = &redisClientHolder{
		names: []string{connection, uri.String()},
		count: 1,
	}

	opts := getRedisOptions(uri)

	switch uri.Scheme {
	case "rediss+cluster":
		opts.TLSConfig = getRedisTLSOptions(uri)
		fallthrough
	case "redis+cluster":
		client.UniversalClient = redis.NewClusterClient(opts.Cluster())
	case "redis+socket":
		simpleOpts := opts.Simple()
		simpleOpts.Network = "unix"
		simpleOpts.Addr = path.Join(uri.Host, uri.Path)
		client.UniversalClient = redis.NewClient(simpleOpts)
	case "rediss":
		opts.TLSConfig = getRedisTLSOptions(uri)
		fallthrough
	case "redis":
		client.UniversalClient = redis.NewClient(opts.Simple())
	default:
		log.Error("Unsupported redis scheme %q in connection %q", uri.Scheme, connection)
		return nil
	}

	for _, name := range client.names {
		m.RedisConnections[name] = client
	}
	return client
}

// getRedisOptions converts the user info, host, path and query of a redis URI to go-redis options.
// TLS is attached separately, only for the rediss schemes.
func getRedisOptions(uri *url.URL) *redis.UniversalOptions {
	opts := &redis.UniversalOptions{}

	if password, ok := uri.User.Password(); ok {
		opts.Password = password
		opts.Username = uri.User.Username()
	} else if uri.User.Username() != "" {
		// a lone user info part is the password
		opts.Password = uri.User.Username()
	}

	for k, v := range uri.Query() {
		last := v[len(v)-1]
		switch replacer.Replace(strings.ToLower(k)) {
		case "addr":
			opts.Addrs = append(opts.Addrs, v...)
		case "addrs":
			opts.Addrs = append(opts.Addrs, strings.Split(last, ",")...)
		case "username":
			opts.Username = last
		case "password":
			opts.Password = last
		case "database", "db":
			opts.DB, _ = strconv.Atoi(last)
		case "maxretries":
			opts.MaxRetries, _ = strconv.Atoi(last)
		case "dialtimeout":
			opts.DialTimeout = parseDuration(last)
		case "readtimeout":
			opts.ReadTimeout = parseDuration(last)
		case "writetimeout":
			opts.WriteTimeout = parseDuration(last)
		case "poolsize":
			opts.PoolSize, _ = strconv.Atoi(last)
		case "minidleconns":
			opts.MinIdleConns, _ = strconv.Atoi(last)
		case "pooltimeout":
			opts.PoolTimeout = parseDuration(last)
		case "idletimeout":
			opts.ConnMaxIdleTime = parseDuration(last)
		}
	}

	if uri.Host != "" {
		opts.Addrs = append(opts.Addrs, strings.Split(uri.Host, ",")...)
	}

	// The path is the database index for TCP and the socket file for unix connections
	if uri.Path != "" && uri.Path != "/" && uri.Scheme != "redis+socket" {
		if db, err := strconv.Atoi(uri.Path[1:]); err == nil {
			opts.DB = db
		} else {
			log.Error("Provided database identifier '%s' is not a valid integer, it is ignored", uri.Path)
		}
	}

	return opts
}

func getRedisTLSOptions(uri *url.URL) *tls.Config {
	tlsConfig := &tls.Config{}
	for _, key := range []string{"skipverify", "insecureskipverify"} {
		if v := uri.Query().Get(key); v != "" {
			if skip, err := strconv.ParseBool(v); err == nil {
				tlsConfig.InsecureSkipVerify = skip
			}
		}
	}
	return tlsConfig
}
