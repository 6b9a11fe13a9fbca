package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/authbridge/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authbridge/internal/dbx"
	"github.com/dmitrijs2005/authbridge/internal/session"
)

// sessionPrefix namespaces the session rows in the metadata table.
const sessionPrefix = "session."

const (
	keyAccess   = sessionPrefix + "access"
	keyRefresh  = sessionPrefix + "refresh"
	keyUserID   = sessionPrefix + "user_id"
	keyUsername = sessionPrefix + "username"
)

// SessionStore persists the logged-in session between invocations.
type SessionStore struct {
	db   *sql.DB
	repo func(dbx.DBTX) metadata.Repository
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{
		db: db,
		repo: func(tx dbx.DBTX) metadata.Repository {
			return metadata.NewSQLiteRepository(tx)
		},
	}
}

// Load returns the saved session, or nil when nobody is logged in. A row
// set missing either token counts as logged out.
func (s *SessionStore) Load(ctx context.Context) (*session.Session, error) {
	values, err := s.repo(s.db).Scan(ctx, sessionPrefix)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess := &session.Session{
		AccessToken:  string(values[keyAccess]),
		RefreshToken: string(values[keyRefresh]),
		User: session.User{
			ID:       string(values[keyUserID]),
			Username: string(values[keyUsername]),
		},
	}
	if !sess.Authenticated() {
		return nil, nil
	}
	return sess, nil
}

// Save replaces the stored session atomically. Stray rows left under the
// session namespace by an older client are dropped in the same transaction.
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if _, err := repo.Purge(ctx, sessionPrefix); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		err := repo.Put(ctx, map[string][]byte{
			keyAccess:   []byte(sess.AccessToken),
			keyRefresh:  []byte(sess.RefreshToken),
			keyUserID:   []byte(sess.User.ID),
			keyUsername: []byte(sess.User.Username),
		})
		if err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	})
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.repo(s.db).Purge(ctx, sessionPrefix); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
