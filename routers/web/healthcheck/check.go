// Copyright 2022 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package healthcheck

import (
	"context"
	"net/http"
	"time"

	"code.gitea.io/sessionvars/modules/json"
	"code.gitea.io/sessionvars/modules/log"
	"code.gitea.io/sessionvars/modules/setting"
)

type status string

const (
	// pass healthy (acceptable aliases: "ok" to support Node's Terminus and "up" for Java's SpringBoot)
	// fail unhealthy (acceptable aliases: "error" to support Node's Terminus and "down" for Java's SpringBoot), and
	// warn healthy, with some concerns.
	//
	// ref https://datatracker.ietf.org/doc/html/draft-inadarei-api-health-check#section-3.1
	pass status = "pass"
	fail status = "fail"
	warn status = "warn"
)

func (s status) ToHTTPStatus() int {
	if s == pass || s == warn {
		return http.StatusOK
	}
	return http.StatusFailedDependency
}

type checks map[string][]componentStatus

// response is the data returned by the health endpoint, which will be marshaled to JSON format
type response struct {
	Status      status `json:"status"`
	Description string `json:"description"`      // a human-friendly description of the service
	Checks      checks `json:"checks,omitempty"` // The Checks Object
}

// componentStatus presents one status of a single check object
type componentStatus struct {
	Status status `json:"status"`
	Time   string `json:"time"`             // the date-time, in ISO8601 format
	Output string `json:"output,omitempty"` // this field SHOULD be omitted for "pass" state.
}

// Pinger is implemented by session variable providers backed by a remote service
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewCheck returns the health check API handler, provider may be nil
func NewCheck(provider any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rsp := response{
			Status:      pass,
			Description: setting.AppName,
			Checks:      make(checks),
		}

		if pinger, ok := provider.(Pinger); ok {
			if checkSessionStorage(r.Context(), pinger, rsp.Checks) != pass {
				rsp.Status = fail
			}
		}

		data, _ := json.MarshalIndent(rsp, "", "  ")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rsp.Status.ToHTTPStatus())
		_, _ = w.Write(data)
	}
}

// checkSessionStorage checks the storage holding the session variables
func checkSessionStorage(ctx context.Context, pinger Pinger, checks checks) status {
	st := componentStatus{}
	if err := pinger.Ping(ctx); err != nil {
		st.Status = fail
		st.Time = getCheckTime()
		st.Output = err.Error()
		log.Error("session storage ping failed with error: %v", err)
	} else {
		st.Status = pass
		st.Time = getCheckTime()
	}
	checks["session:ping"] = []componentStatus{st}
	return st.Status
}

func getCheckTime() string {
	return time.Now().UTC().Format(time.RFC3339)
}
