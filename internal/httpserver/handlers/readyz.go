package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portal/internal/logger"
)

type readyzResponse struct {
	Ready      bool              `json:"ready"`
	Components map[string]string `json:"components"`
	Sessions   *int              `json:"sessions,omitempty"`
}

const readyzTimeout = 2 * time.Second

// Readyz reports whether the config store is readable and the session
// backend answers, along with the number of stored sessions.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		resp := readyzResponse{Ready: true, Components: map[string]string{}}

		if _, err := d.ConfigStore.Revision(); err != nil {
			d.Logger.Warn("config store not ready", logger.Error(err))
			resp.Ready = false
			resp.Components["store"] = err.Error()
		} else {
			resp.Components["store"] = "ok"
		}

		if err := d.Sessions.Ping(ctx); err != nil {
			d.Logger.Warn("session backend not ready", logger.Error(err))
			resp.Ready = false
			resp.Components["sessions"] = err.Error()
		} else {
			resp.Components["sessions"] = "ok"
			if n, err := d.Sessions.Count(ctx); err != nil {
				d.Logger.Warn("failed to count sessions", logger.Error(err))
			} else {
				resp.Sessions = &n
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if !resp.Ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
