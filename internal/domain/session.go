package domain

import "time"

// Session is the per-visitor state: the config copy loaded when the session
// started and whether the visitor unlocked the manager view.
//
// A Session is not safe for concurrent use; each request works on its own
// copy fetched from a session store.
type Session struct {
	ID string `json:"id"`

	// Config is the cached document; Revision identifies the stored bytes it came from.
	Config   *Config `json:"config"`
	Revision string  `json:"revision"`

	Manager bool `json:"manager"`

	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// NewSession starts an anonymous session around a loaded config.
func NewSession(id string, cfg *Config, revision string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Config:     cfg,
		Revision:   revision,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// Authenticate moves an anonymous session to the manager state when password
// matches the cached config. A wrong password leaves the state untouched.
func (s *Session) Authenticate(password string) error {
	if !CheckPassword(s.Config.Password(), password) {
		return ErrWrongPassword
	}
	s.Manager = true
	return nil
}

// Logout returns the session to the anonymous state.
func (s *Session) Logout() {
	s.Manager = false
}

// CanView reports whether the links of d are visible to this session.
func (s *Session) CanView(d *Department) bool {
	return d != nil && (!d.Protected || s.Manager)
}

// Adopt replaces the cached config after a successful save or reload.
func (s *Session) Adopt(cfg *Config, revision string) {
	s.Config = cfg
	s.Revision = revision
}

// Touch records activity for idle-session collection.
func (s *Session) Touch(now time.Time) {
	s.LastSeenAt = now
}
