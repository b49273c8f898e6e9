// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package web

import (
	"errors"
	"net/http"
	"net/url"

	"code.gitea.io/sessionvars/modules/json"
	"code.gitea.io/sessionvars/modules/log"
	session_module "code.gitea.io/sessionvars/modules/session"
	"code.gitea.io/sessionvars/modules/util"
	"code.gitea.io/sessionvars/routers/common"

	"github.com/go-chi/chi/v5"
)

type apiError struct {
	Message string `json:"message"`
}

// Variable is a single session variable
type Variable struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Session describes the current session, its id stays in the HttpOnly cookie
type Session struct {
	Variables map[string]any `json:"variables"`
}

// maxBodySize bounds JSON request bodies
const maxBodySize = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Unable to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session_module.ErrSessionDestroyed):
		writeJSON(w, http.StatusGone, apiError{Message: err.Error()})
	case errors.Is(err, util.ErrNotExist):
		writeJSON(w, http.StatusNotFound, apiError{Message: err.Error()})
	case errors.Is(err, util.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, apiError{Message: err.Error()})
	default:
		log.Error("Session operation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Message: http.StatusText(http.StatusInternalServerError)})
	}
}

func decodeBody(w http.ResponseWriter, req *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodySize)).Decode(v); err != nil {
		if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
			return util.NewInvalidArgumentErrorf("request body is larger than %d bytes", maxErr.Limit)
		}
		return util.NewInvalidArgumentErrorf("invalid JSON body: %v", err)
	}
	return nil
}

// pathParam returns the unescaped route parameter, routing is done on the escaped path
func pathParam(req *http.Request, name string) string {
	s, _ := url.PathUnescape(chi.URLParam(req, name))
	return s
}

func currentSession(store *session_module.VariableStore) Session {
	return Session{Variables: store.GetAllVariables()}
}

// ListVariables returns all variables of the session
func ListVariables(w http.ResponseWriter, req *http.Request) {
	store := common.GetVariableStore(req)
	writeJSON(w, http.StatusOK, currentSession(store))
}

// GetVariable returns one variable, 404 when it is not set
func GetVariable(w http.ResponseWriter, req *http.Request) {
	store := common.GetVariableStore(req)
	name := pathParam(req, "name")
	value, ok := store.GetVariable(name).Get()
	if !ok {
		writeError(w, util.NewNotExistErrorf("session variable %q is not set", name))
		return
	}
	writeJSON(w, http.StatusOK, Variable{Name: name, Value: value})
}

// SetVariable sets one variable, the body is the JSON encoded value
func SetVariable(w http.ResponseWriter, req *http.Request) {
	store := common.GetVariableStore(req)
	name := pathParam(req, "name")
	var value any
	if err := decodeBody(w, req, &value); err != nil {
		writeError(w, err)
		return
	}
	if err := store.SetVariable(name, value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Variable{Name: name, Value: value})
}

// SetVariables sets every variable of the JSON object in the body
func SetVariables(w http.ResponseWriter, req *http.Request) {
	store := common.GetVariableStore(req)
	var values map[string]any
	if err := decodeBody(w, req, &values); err != nil {
		writeError(w, err)
		return
	}
	if err := store.SetVariables(values); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currentSession(store))
}

// RemoveVariable removes one variable, removing an unset variable succeeds
func RemoveVariable(w http.ResponseWriter, req *http.Request) {
	store := common.GetVariableStore(req)
	if err := store.RemoveVariable(pathParam(req, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveAllVariables removes every variable but keeps the session
func RemoveAllVariables(w http.ResponseWriter, req *http.Request) {
	store := common.GetVariableStore(req)
	if err := store.RemoveAllVariables(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateSession moves the variables to a new session id
func RegenerateSession(w http.ResponseWriter, req *http.Request) {
	store := common.GetVariableStore(req)
	if err := store.RegenerateSession(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, currentSession(store))
}

// DestroySession ends the session
func DestroySession(w http.ResponseWriter, req *http.Request) {
	store := common.GetVariableStore(req)
	if err := store.DestroySession(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
