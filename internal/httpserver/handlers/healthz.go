package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Store         string  `json:"store,omitempty"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Healthz reports liveness and build information. It never touches the
// store or the session backend; that is Readyz's job.
func Healthz(d deps.Deps) http.HandlerFunc {
	var store string
	if d.ConfigStore != nil {
		store = d.ConfigStore.Path()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		uptime := d.Now().Sub(d.StartTime)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthzResponse{
			Status:        "ok",
			Uptime:        uptime.Truncate(time.Second).String(),
			UptimeSeconds: uptime.Seconds(),
			Store:         store,
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		})
	}
}
