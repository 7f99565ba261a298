package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portal/internal/httpserver/mw"
	"github.com/MrSnakeDoc/portal/internal/logger"
	"github.com/MrSnakeDoc/portal/internal/render"
	"github.com/MrSnakeDoc/portal/internal/utils"
)

// Login unlocks the manager view when the submitted password matches the
// session's cached config.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := mw.CurrentSession(r)

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		err := sess.Authenticate(r.PostForm.Get("password"))
		if errors.Is(err, domain.ErrWrongPassword) {
			d.Logger.Warn("wrong manager password",
				logger.String("session_id", sess.ID),
				logger.String("ip", utils.ClientIP(r, d.TrustProxy)))
			renderPage(w, r, d, sess, render.PageOptions{LoginError: msgWrongPassword}, http.StatusUnauthorized)
			return
		}

		if err := d.Sessions.Save(r.Context(), sess); err != nil {
			d.Logger.Error("failed to save session after login", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}

		d.Logger.Info("manager unlocked", logger.String("session_id", sess.ID))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Logout returns the session to the anonymous view.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := mw.CurrentSession(r)
		if sess.Manager {
			sess.Logout()
			if err := d.Sessions.Save(r.Context(), sess); err != nil {
				d.Logger.Error("failed to save session after logout", logger.Error(err))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			d.Logger.Info("manager logged out", logger.String("session_id", sess.ID))
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
