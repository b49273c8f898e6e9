// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package session

import (
	"encoding/gob"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

func init() {
	// JSON decoded values must survive the gob encoding of securecookie
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// gorillaIDKey holds the session id, a cookie session has none of its own
const gorillaIDKey = "_sessionvars_id"

// gorillaHost keeps the whole session in a gorilla session, usually a signed cookie.
// Every write saves the session, it must happen before the response body is written.
type gorillaHost struct {
	resp http.ResponseWriter
	req  *http.Request
	sess *sessions.Session
}

var (
	_ Host     = (*gorillaHost)(nil)
	_ RawStore = (*gorillaHost)(nil)
)

// NewGorillaHost returns the Host of a request whose session is kept by a gorilla store
func NewGorillaHost(store sessions.Store, name string, resp http.ResponseWriter, req *http.Request) (Host, error) {
	sess, err := store.Get(req, name)
	if err != nil {
		// a cookie signed with an old key, start over with the fresh session gorilla returned
		if sess == nil {
			return nil, fmt.Errorf("unable to read gorilla session %q: %w", name, err)
		}
		sess.Values = make(map[any]any)
	}
	h := &gorillaHost{resp: resp, req: req, sess: sess}
	if _, ok := sess.Values[gorillaIDKey].(string); !ok {
		// issue the cookie right away, like go-chi does for a new session
		sess.Values[gorillaIDKey] = uuid.NewString()
		if err := h.save(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// save replaces the session cookie written by an earlier save of the same request,
// cookies set by others are kept
func (h *gorillaHost) save() error {
	header := h.resp.Header()
	cookies := header.Values("Set-Cookie")
	header.Del("Set-Cookie")
	prefix := h.sess.Name() + "="
	for _, cookie := range cookies {
		if !strings.HasPrefix(cookie, prefix) {
			header.Add("Set-Cookie", cookie)
		}
	}
	return h.sess.Save(h.req, h.resp)
}

func (h *gorillaHost) RawStore() (RawStore, error) {
	return h, nil
}

func (h *gorillaHost) ID() string {
	id, _ := h.sess.Values[gorillaIDKey].(string)
	return id
}

func (h *gorillaHost) Get(key any) any {
	if key == gorillaIDKey {
		return nil
	}
	return h.sess.Values[key]
}

func (h *gorillaHost) Set(key, value any) error {
	if key == gorillaIDKey {
		return fmt.Errorf("session key %q is reserved", gorillaIDKey)
	}
	h.sess.Values[key] = value
	return h.save()
}

func (h *gorillaHost) Delete(key any) error {
	if _, ok := h.sess.Values[key]; !ok || key == gorillaIDKey {
		return nil
	}
	delete(h.sess.Values, key)
	return h.save()
}

func (h *gorillaHost) Flush() error {
	id := h.ID()
	clear(h.sess.Values)
	h.sess.Values[gorillaIDKey] = id
	return h.save()
}

// Destroy expires the cookie
func (h *gorillaHost) Destroy() error {
	clear(h.sess.Values)
	if h.sess.Options == nil {
		h.sess.Options = &sessions.Options{}
	}
	h.sess.Options.MaxAge = -1
	return h.save()
}

// Regenerate keeps the values, the caller flushes them if needed
func (h *gorillaHost) Regenerate() (RawStore, error) {
	h.sess.Values[gorillaIDKey] = uuid.NewString()
	if err := h.save(); err != nil {
		return nil, err
	}
	return h, nil
}
