package mw

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portal/internal/logger"
)

// SessionCookie is the cookie carrying the visitor's session id.
const SessionCookie = "portal_session"

// touchInterval limits how often a read-only request rewrites its session.
const touchInterval = time.Minute

type sessionKey struct{}

// CurrentSession returns the session attached by the Session middleware.
func CurrentSession(r *http.Request) *domain.Session {
	s, _ := r.Context().Value(sessionKey{}).(*domain.Session)
	return s
}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// Session resolves the visitor's session from its cookie, or starts a new one
// from a fresh load of the config store. Each request gets its own copy;
// handlers that change it must save it back.
func Session(d deps.Deps) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			now := d.Now()

			id, sess, err := lookupSession(ctx, d, r)
			if errors.Is(err, domain.ErrSessionCorrupt) {
				d.Logger.Warn("dropping unreadable session",
					logger.String("session_id", id),
					logger.Error(err))
				if err := d.Sessions.Delete(ctx, id); err != nil {
					d.Logger.Warn("failed to delete unreadable session", logger.Error(err))
				}
				err = domain.ErrSessionNotFound
			}
			switch {
			case err == nil:
				if now.Sub(sess.LastSeenAt) >= touchInterval {
					sess.Touch(now)
					if err := d.Sessions.Save(ctx, sess); err != nil {
						d.Logger.Warn("failed to refresh session", logger.Error(err))
					}
				}
			case errors.Is(err, domain.ErrSessionNotFound):
				sess, err = startSession(ctx, d, now)
				if err != nil {
					d.Logger.Error("failed to start session", logger.Error(err))
					http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
					return
				}
				setSessionCookie(w, sess.ID, d.CookieSecure)
			default:
				d.Logger.Error("session store unavailable", logger.Error(err))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
		})
	}
}

func lookupSession(ctx context.Context, d deps.Deps, r *http.Request) (string, *domain.Session, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", nil, domain.ErrSessionNotFound
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", nil, domain.ErrSessionNotFound
	}
	sess, err := d.Sessions.Get(ctx, c.Value)
	return c.Value, sess, err
}

func startSession(ctx context.Context, d deps.Deps, now time.Time) (*domain.Session, error) {
	snap, err := d.ConfigStore.Load()
	if err != nil {
		return nil, err
	}

	sess := domain.NewSession(uuid.NewString(), snap.Config, snap.Revision, now)
	if err := d.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	d.Logger.Debug("session started",
		logger.String("session_id", sess.ID),
		logger.String("revision", sess.Revision))
	return sess, nil
}

func setSessionCookie(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
