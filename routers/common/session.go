// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package common

import (
	"cmp"
	"context"
	"net/http"

	"code.gitea.io/sessionvars/modules/log"
	session_module "code.gitea.io/sessionvars/modules/session"
	"code.gitea.io/sessionvars/modules/setting"

	"gitea.com/go-chi/session"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

type variableStoreContextKeyType struct{}

var variableStoreContextKey variableStoreContextKeyType

// Sessioner returns the go-chi session middleware configured by setting.SessionConfig.
// The gorilla host needs no middleware, its session is read by VariableStorer.
func Sessioner() func(next http.Handler) http.Handler {
	if setting.SessionConfig.Host == setting.SessionHostGorilla {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return session.Sessioner(session.Options{
		Provider:       setting.SessionConfig.Provider,
		ProviderConfig: setting.SessionConfig.ProviderConfig,
		CookieName:     setting.SessionConfig.CookieName,
		CookiePath:     setting.SessionConfig.CookiePath,
		Gclifetime:     setting.SessionConfig.Gclifetime,
		Maxlifetime:    setting.SessionConfig.Maxlifetime,
		Secure:         setting.SessionConfig.Secure,
		SameSite:       setting.SessionConfig.SameSite,
		Domain:         setting.SessionConfig.Domain,
	})
}

// VariableStorer mirrors the session variables of every request into a VariableStore.
// A nil provider keeps the variables in the go-chi session. It must run after Sessioner.
func VariableStorer(provider session_module.Provider) func(next http.Handler) http.Handler {
	openHost := newHostOpener()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			host, err := openHost(resp, req)
			if err != nil {
				log.Error("Unable to open %s session: %v", setting.SessionConfig.Host, err)
				http.Error(resp, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			backend, err := session_module.OpenBackend(provider, host)
			if err != nil {
				log.Error("Unable to open session backend: %v", err)
				http.Error(resp, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			store, err := session_module.NewVariableStore(backend)
			if err != nil {
				log.Error("Unable to load session variables: %v", err)
				http.Error(resp, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(req.Context(), variableStoreContextKey, store)
			next.ServeHTTP(resp, req.WithContext(ctx))
		})
	}
}

type hostOpener func(resp http.ResponseWriter, req *http.Request) (session_module.Host, error)

func newHostOpener() hostOpener {
	if setting.SessionConfig.Host != setting.SessionHostGorilla {
		return func(resp http.ResponseWriter, req *http.Request) (session_module.Host, error) {
			return session_module.NewRequestHost(resp, req), nil
		}
	}
	store := NewGorillaStore()
	return func(resp http.ResponseWriter, req *http.Request) (session_module.Host, error) {
		return session_module.NewGorillaHost(store, setting.SessionConfig.CookieName, resp, req)
	}
}

// NewGorillaStore creates the signed cookie store of the gorilla session host
func NewGorillaStore() *sessions.CookieStore {
	key := []byte(setting.SessionConfig.SecretKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     cmp.Or(setting.SessionConfig.CookiePath, "/"),
		Domain:   setting.SessionConfig.Domain,
		Secure:   setting.SessionConfig.Secure,
		HttpOnly: true,
		SameSite: setting.SessionConfig.SameSite,
	}
	store.MaxAge(int(setting.SessionConfig.Maxlifetime))
	return store
}

// GetVariableStore returns the VariableStore of the request, nil when VariableStorer did not run
func GetVariableStore(req *http.Request) *session_module.VariableStore {
	store, _ := req.Context().Value(variableStoreContextKey).(*session_module.VariableStore)
	return store
}
