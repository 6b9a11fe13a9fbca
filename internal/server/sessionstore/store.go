// Package sessionstore is a gorilla/sessions Store that keeps session values
// in PostgreSQL. The cookie carries only a signed, encrypted session ID.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/common"
	"github.com/dmitrijs2005/authbridge/internal/cryptox"
	"github.com/dmitrijs2005/authbridge/internal/logging"
	repo "github.com/dmitrijs2005/authbridge/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/authbridge/internal/session"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// defaultTTL is the row lifetime used for browser-session cookies (MaxAge 0).
const defaultTTL = 24 * time.Hour

// Store implements sessions.Store.
type Store struct {
	repo    repo.Repository
	codecs  []securecookie.Codec
	encoder securecookie.GobEncoder
	Options *sessions.Options
	now     func() time.Time
}

var (
	_ sessions.Store  = (*Store)(nil)
	_ session.Revoker = (*Store)(nil)
)

// New builds a Store whose cookie codec uses keys. opts is copied into every
// new session.
func New(r repo.Repository, keys cryptox.CookieKeys, opts sessions.Options) *Store {
	codec := securecookie.New(keys.Hash, keys.Block)
	if opts.MaxAge > 0 {
		codec.MaxAge(opts.MaxAge)
	}
	o := opts
	return &Store{
		repo:    r,
		codecs:  []securecookie.Codec{codec},
		Options: &o,
		now:     time.Now,
	}
}

// Get returns the session cached in the request registry, loading it on
// first use.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing cookie, a
// cookie that fails to decode or a row that no longer exists all yield a
// fresh session; only a decode failure is reported, as a securecookie
// error, the way CookieStore does.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.codecs...); err != nil {
		return session, err
	}

	err = s.load(r.Context(), session)
	switch {
	case err == nil:
		session.IsNew = false
	case errors.Is(err, common.ErrSessionNotFound):
		session.ID = ""
		err = nil
	}
	return session, err
}

// Save writes the session row and refreshes the cookie. A negative MaxAge
// deletes both.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()

	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.repo.Delete(ctx, session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.save(ctx, session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

// Revoke deletes the row behind gs and clears its ID. The cookie is left
// alone; the following Save replaces it.
func (s *Store) Revoke(r *http.Request, gs *sessions.Session) error {
	if gs.ID != "" {
		if err := s.repo.Delete(r.Context(), gs.ID); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}
	gs.ID = ""
	gs.IsNew = true
	return nil
}

func (s *Store) load(ctx context.Context, session *sessions.Session) error {
	rec, err := s.repo.Find(ctx, session.ID, s.now())
	if err != nil {
		return err
	}
	if err := s.encoder.Deserialize(rec.Data, &session.Values); err != nil {
		return fmt.Errorf("decode session %s: %w", session.ID, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, session *sessions.Session) error {
	data, err := s.encoder.Serialize(session.Values)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ttl := defaultTTL
	if session.Options.MaxAge > 0 {
		ttl = time.Duration(session.Options.MaxAge) * time.Second
	}
	return s.repo.Upsert(ctx, repo.Record{ID: session.ID, Data: data, ExpiresAt: s.now().Add(ttl)})
}

// Cleanup deletes expired rows every interval until ctx is done.
func (s *Store) Cleanup(ctx context.Context, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.repo.DeleteExpired(ctx, s.now())
			if err != nil {
				logger.Error(ctx, "session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}
