package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portal/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/portal/internal/httpserver/mw"
)

func init() { Register("portal", registerPortal) }

func registerPortal(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger), mw.Session(d))

		r.Get("/", handlers.Portal(d))
		r.Post("/logout", handlers.Logout(d))
		r.Post("/editor", handlers.Editor(d))

		login := r.With()
		if d.LoginRateBurst > 0 {
			login = r.With(mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.LoginRateBurst,
				RefillPerIPPerMin: d.LoginRatePerMin,
				MaxEntries:        10000,
				TrustProxy:        d.TrustProxy,
				Now:               d.TimeNow,
			}))
		}
		login.Post("/login", handlers.Login(d))
	})
}
