// Copyright 2017 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package web

import (
	"net/http"

	session_module "code.gitea.io/sessionvars/modules/session"
	"code.gitea.io/sessionvars/modules/setting"
	"code.gitea.io/sessionvars/routers/common"
	"code.gitea.io/sessionvars/routers/web/healthcheck"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Routes returns the router of the session variable API.
// provider holds the variables, nil keeps them in the go-chi session.
func Routes(provider session_module.Provider) http.Handler {
	r := chi.NewRouter()
	for _, middle := range common.Middlewares() {
		r.Use(middle)
	}

	r.Get("/api/healthz", healthcheck.NewCheck(provider))

	r.Route("/api/session", func(r chi.Router) {
		if setting.CORSConfig.Enabled {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   setting.CORSConfig.AllowDomain,
				AllowedMethods:   setting.CORSConfig.Methods,
				AllowedHeaders:   setting.CORSConfig.Headers,
				AllowCredentials: setting.CORSConfig.AllowCredentials,
				MaxAge:           int(setting.CORSConfig.MaxAge.Seconds()),
			}))
		}
		r.Use(common.Sessioner())
		r.Use(common.VariableStorer(provider))

		r.Delete("/", DestroySession)
		r.Post("/regenerate", RegenerateSession)

		r.Get("/vars", ListVariables)
		r.Patch("/vars", SetVariables)
		r.Delete("/vars", RemoveAllVariables)

		r.Get("/vars/{name}", GetVariable)
		r.Put("/vars/{name}", SetVariable)
		r.Delete("/vars/{name}", RemoveVariable)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, apiError{Message: "not found"})
	})
	return r
}
