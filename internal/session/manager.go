package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/cryptox"
	"github.com/dmitrijs2005/authbridge/internal/logging"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// Refresh outcomes reported to a RefreshObserver.
const (
	RefreshOK          = "refreshed"
	RefreshExpired     = "expired"
	RefreshUnavailable = "unavailable"
)

// RefreshObserver is notified about every refresh attempt.
type RefreshObserver interface {
	ObserveRefresh(outcome string)
}

// Manager binds Sessions to HTTP requests through a gorilla/sessions store.
// The store decides where the data lives (cookie or server side); Manager
// only maps it to Session and runs the refresh state machine.
type Manager struct {
	store     sessions.Store
	name      string
	refresher *Refresher
	logger    logging.Logger
	observer  RefreshObserver
	maxAge    int
}

type Option func(*Manager)

// WithMaxAge sets the lifetime restored on a cookie that was cleared earlier
// in the same request, e.g. an expired session followed by a fresh login.
func WithMaxAge(d time.Duration) Option {
	return func(m *Manager) { m.maxAge = int(d.Seconds()) }
}

func WithObserver(o RefreshObserver) Option {
	return func(m *Manager) { m.observer = o }
}

func NewManager(store sessions.Store, cookieName string, refresher *Refresher, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{store: store, name: cookieName, refresher: refresher, logger: logger}
	for _, o := range opts {
		o(m)
	}
	return m
}

// CookieOptions control the session cookie attributes.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

// Options returns the gorilla cookie attributes for o.
func (o CookieOptions) Options() sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(o.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewCookieStore keeps the whole session in a signed, encrypted cookie.
func NewCookieStore(keys cryptox.CookieKeys, opts CookieOptions) *sessions.CookieStore {
	store := sessions.NewCookieStore(keys.Hash, keys.Block)
	o := opts.Options()
	store.Options = &o
	store.MaxAge(o.MaxAge)
	return store
}

// Load reads the session attached to r. A missing or undecodable cookie
// yields (nil, nil); only store failures are returned as errors.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	gs, err := m.store.Get(r, m.name)
	if err != nil {
		var cerr securecookie.Error
		if errors.As(err, &cerr) && cerr.IsDecode() {
			// tampered, rotated key or expired cookie: start over anonymous
			return nil, nil
		}
		return nil, err
	}
	return fromValues(gs.Values), nil
}

// Revoker is implemented by stores that key sessions by a server-side ID.
// Revoke drops the stored record and leaves gs without an ID, so the next
// save mints a new one.
type Revoker interface {
	Revoke(r *http.Request, gs *sessions.Session) error
}

// Save persists s for subsequent requests under the request's current
// session identity.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, s *Session) error {
	gs, err := m.store.Get(r, m.name)
	if err != nil && gs == nil {
		return err
	}
	return m.write(w, r, gs, s)
}

// Renew stores s under a fresh identity. Whatever the incoming cookie
// pointed at is revoked first, so an identity planted before login never
// resolves to the logged-in user.
func (m *Manager) Renew(w http.ResponseWriter, r *http.Request, s *Session) error {
	gs, err := m.store.Get(r, m.name)
	if err != nil && gs == nil {
		return err
	}
	if rv, ok := m.store.(Revoker); ok {
		if err := rv.Revoke(r, gs); err != nil {
			return err
		}
	}
	return m.write(w, r, gs, s)
}

func (m *Manager) write(w http.ResponseWriter, r *http.Request, gs *sessions.Session, s *Session) error {
	for k := range gs.Values {
		delete(gs.Values, k)
	}
	toValues(s, gs.Values)
	if gs.Options != nil && gs.Options.MaxAge < 0 {
		gs.Options.MaxAge = m.maxAge
	}
	return gs.Save(r, w)
}

// Clear destroys the stored session and expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	gs, err := m.store.Get(r, m.name)
	if err != nil && gs == nil {
		return err
	}
	for k := range gs.Values {
		delete(gs.Values, k)
	}
	if gs.Options == nil {
		gs.Options = &sessions.Options{Path: "/"}
	}
	gs.Options.MaxAge = -1
	return gs.Save(r, w)
}

// Resolve loads the session for r and brings it up to date. It returns nil
// whenever the request must be treated as anonymous. A renewed pair is saved
// back; an expired session is cleared.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) *Session {
	ctx := r.Context()
	log := logging.FromContext(ctx, m.logger)

	s, err := m.Load(r)
	if err != nil {
		log.Error(ctx, "session load failed", "error", err)
		return nil
	}
	if s == nil {
		return nil
	}

	resolved, refreshed, err := m.refresher.Resolve(ctx, s)
	switch {
	case errors.Is(err, ErrExpired):
		m.observe(RefreshExpired)
		log.Info(ctx, "session expired", "user", s.User.Username)
		if err := m.Clear(w, r); err != nil {
			log.Error(ctx, "session clear failed", "error", err)
		}
		return nil
	case err != nil:
		m.observe(RefreshUnavailable)
		log.Warn(ctx, "session refresh failed", "user", s.User.Username, "error", err)
		return nil
	}

	if refreshed {
		m.observe(RefreshOK)
		log.Debug(ctx, "session refreshed", "user", resolved.User.Username)
		if err := m.Save(w, r, resolved); err != nil {
			log.Error(ctx, "session save failed", "error", err)
		}
	}
	return resolved
}

// Middleware resolves the session once per request and makes it available
// through FromContext.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Resolve(w, r)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func (m *Manager) observe(outcome string) {
	if m.observer != nil {
		m.observer.ObserveRefresh(outcome)
	}
}

type ctxKey struct{}

// WithSession returns ctx carrying s. A nil s marks the request anonymous.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session, or nil for anonymous requests.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
