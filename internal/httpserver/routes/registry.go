package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
)

type (
	// Registrar mounts one group of routes.
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []entry

// Register adds a named route group from an init function. The middlewares
// wrap that group only. Registering a name twice panics.
func Register(name string, reg Registrar, mws ...Middleware) {
	for _, e := range registry {
		if e.name == name {
			panic(fmt.Sprintf("routes: %q registered twice", name))
		}
	}
	registry = append(registry, entry{name: name, reg: reg, mws: mws})
}

// Names lists the registered groups in registration order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, e := range registry {
		names = append(names, e.name)
	}
	return names
}

// RegisterAll mounts every group on r. Called once per router.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		r.Group(func(g chi.Router) {
			if len(e.mws) > 0 {
				g.Use(e.mws...)
			}
			e.reg(g, d)
		})
	}
}
