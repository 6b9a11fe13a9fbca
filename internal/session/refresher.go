package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/common"
	"github.com/dmitrijs2005/authbridge/internal/tokens"
)

var (
	// ErrExpired means the session can no longer be renewed and the user
	// must log in again.
	ErrExpired = fmt.Errorf("session expired: %w", common.ErrRefreshTokenExpired)

	// ErrRefreshUnavailable means a refresh was due but the API could not be
	// reached. The stored session is kept; the current request runs anonymous.
	ErrRefreshUnavailable = errors.New("token refresh unavailable")
)

// TokenRefresher exchanges a refresh token for a new pair.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refresh string) (tokens.Pair, error)
}

// Refresher drives the token refresh state machine.
type Refresher struct {
	api    TokenRefresher
	leeway time.Duration
	now    func() time.Time
}

// NewRefresher returns a Refresher that renews the access token once it is
// within leeway of expiring.
func NewRefresher(api TokenRefresher, leeway time.Duration) *Refresher {
	return &Refresher{api: api, leeway: leeway, now: time.Now}
}

// Resolve returns the session to use for the current request.
//
//   - nil in, nil out: anonymous stays anonymous.
//   - access token not due: s is returned as is.
//   - due and refresh token valid: the pair is exchanged, refreshed is true.
//   - refresh token expired, undecodable or rejected by the API: ErrExpired.
//   - API unreachable: ErrRefreshUnavailable, unless the access token has not
//     actually expired yet, in which case s is still usable.
func (r *Refresher) Resolve(ctx context.Context, s *Session) (resolved *Session, refreshed bool, err error) {
	if s == nil {
		return nil, false, nil
	}
	if !s.Authenticated() {
		return nil, false, ErrExpired
	}

	now := r.now()

	access, err := tokens.Decode(s.AccessToken)
	if err != nil {
		return nil, false, ErrExpired
	}
	if !access.ExpiresWithin(now, r.leeway) {
		return s, false, nil
	}

	refresh, err := tokens.Decode(s.RefreshToken)
	if err != nil || refresh.ExpiresWithin(now, 0) {
		return nil, false, ErrExpired
	}

	pair, err := r.api.RefreshToken(ctx, s.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			if !access.ExpiresWithin(now, 0) {
				return s, false, nil
			}
			return nil, false, fmt.Errorf("%w: %w", ErrRefreshUnavailable, err)
		}
		return nil, false, ErrExpired
	}
	if pair.Access == "" {
		return nil, false, ErrExpired
	}

	next := *s
	next.AccessToken = pair.Access
	if pair.Refresh != "" {
		next.RefreshToken = pair.Refresh
	}
	return &next, true, nil
}
