package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/editor"
	"github.com/MrSnakeDoc/portal/internal/logger"
	"github.com/MrSnakeDoc/portal/internal/render"
	"github.com/MrSnakeDoc/portal/internal/store/filestore"
)

// SessionStore persists visitor sessions between requests.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	AllowedHosts    []string         // Host headers allowed to access the portal
	AllowedCIDRS    []string         // IPs allowed to access healthz/readyz endpoints
	TrustProxy      bool             // true if running behind a trusted reverse proxy
	ConfigStore     *filestore.Store // the JSON document with departments and links
	Sessions        SessionStore     // per-visitor session state
	Editor          *editor.Service  // applies manager edits to sessions and the store
	Brand           render.Brand     // page title, caption and footer
	CookieSecure    bool             // mark the session cookie Secure
	LoginRateBurst  int              // 0 disables login throttling
	LoginRatePerMin int              // token refill per client IP per minute
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
