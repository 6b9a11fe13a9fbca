// Package session owns the user's session: the access/refresh token pair
// issued by the REST API plus the identity it belongs to.
//
// A session moves through anonymous -> authenticated -> (refresh due) ->
// authenticated' | expired. Callers outside this package only ever see a
// session that is present and valid, or no session at all.
package session

import "github.com/dmitrijs2005/authbridge/internal/tokens"

// User identifies the session owner.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Session is the authenticated user context. Tokens are opaque credentials
// passed through to the API; the bridge never stores them anywhere but the
// configured session store.
type Session struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	User         User   `json:"user"`
}

// New builds a session from a freshly issued token pair. The user ID is
// taken from the access token claims.
func New(pair tokens.Pair, username string) (*Session, error) {
	claims, err := tokens.Decode(pair.Access)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		User:         User{ID: string(claims.UserID), Username: username},
	}, nil
}

// Authenticated reports whether s carries credentials at all.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}

const (
	valueAccess   = "access"
	valueRefresh  = "refresh"
	valueUserID   = "user_id"
	valueUsername = "username"
)

// toValues and fromValues translate between Session and the untyped value
// map gorilla/sessions stores.
func toValues(s *Session, values map[any]any) {
	values[valueAccess] = s.AccessToken
	values[valueRefresh] = s.RefreshToken
	values[valueUserID] = s.User.ID
	values[valueUsername] = s.User.Username
}

func fromValues(values map[any]any) *Session {
	str := func(k string) string {
		v, _ := values[k].(string)
		return v
	}
	s := &Session{
		AccessToken:  str(valueAccess),
		RefreshToken: str(valueRefresh),
		User:         User{ID: str(valueUserID), Username: str(valueUsername)},
	}
	if !s.Authenticated() {
		return nil
	}
	return s
}
