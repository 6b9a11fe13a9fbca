// Package actions implements the server-side operations behind every form:
// login, registration, profile update, password change, account deletion,
// plus reading the current user and logging out.
//
// Actions take an already validated payload and the request's session,
// make exactly one REST call, and fold the outcome into a Result. They never
// return errors: transport and server failures are logged and reported as
// KindOpaque.
package actions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/apiclient"
	"github.com/dmitrijs2005/authbridge/internal/forms"
	"github.com/dmitrijs2005/authbridge/internal/logging"
	"github.com/dmitrijs2005/authbridge/internal/session"
)

const (
	NameLogin          = "login"
	NameLogout         = "logout"
	NameRegister       = "register"
	NameProfile        = "profile"
	NameChangePassword = "change_password"
	NameDeleteAccount  = "delete_account"
	NameCurrentUser    = "current_user"
)

// ClientFactory builds an API client bound to a session, or an anonymous
// one for a nil session.
type ClientFactory interface {
	ForSession(s *session.Session) apiclient.API
}

// Observer is notified when an action finishes.
type Observer interface {
	ObserveAction(action string, outcome string, elapsed time.Duration)
}

type Actions struct {
	clients  ClientFactory
	logger   logging.Logger
	observer Observer
}

func New(clients ClientFactory, logger logging.Logger, observer Observer) *Actions {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Actions{clients: clients, logger: logger, observer: observer}
}

// Login exchanges credentials for a token pair. On success the returned
// session is ready to be saved.
func (a *Actions) Login(ctx context.Context, in forms.Login) (Result, *session.Session) {
	start := time.Now()

	pair, err := a.clients.ForSession(nil).ObtainToken(ctx, in.Username, in.Password)
	if err != nil {
		return a.finish(ctx, NameLogin, start, a.classify(ctx, NameLogin, err)), nil
	}

	s, err := session.New(pair, in.Username)
	if err != nil {
		a.log(ctx).Error(ctx, "login returned unusable tokens", "action", NameLogin, "error", err)
		return a.finish(ctx, NameLogin, start, Opaque()), nil
	}
	return a.finish(ctx, NameLogin, start, OK()), s
}

// Logout only forgets the session locally; the API keeps no server-side
// session to revoke. The caller clears the session store.
func (a *Actions) Logout(ctx context.Context, s *session.Session) Result {
	start := time.Now()
	if s.Authenticated() {
		a.log(ctx).Info(ctx, "user logged out", "user", s.User.Username)
	}
	return a.finish(ctx, NameLogout, start, OK())
}

func (a *Actions) Register(ctx context.Context, in forms.Register) Result {
	start := time.Now()

	err := a.clients.ForSession(nil).CreateUser(ctx, apiclient.UserCreate{
		Username:       in.Username,
		Password:       in.Password,
		PasswordRetype: in.PasswordRetype,
	})
	if err != nil {
		return a.finish(ctx, NameRegister, start, a.classify(ctx, NameRegister, err))
	}
	return a.finish(ctx, NameRegister, start, OK())
}

// Profile applies a partial update; nil fields are not sent.
func (a *Actions) Profile(ctx context.Context, s *session.Session, in forms.Profile) (Result, *apiclient.UserCurrent) {
	start := time.Now()
	if !s.Authenticated() {
		return a.finish(ctx, NameProfile, start, a.unauthenticated(ctx, NameProfile)), nil
	}

	u, err := a.clients.ForSession(s).UpdateCurrentUser(ctx, apiclient.PatchedUserCurrent{
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		return a.finish(ctx, NameProfile, start, a.classify(ctx, NameProfile, err)), nil
	}
	return a.finish(ctx, NameProfile, start, OK()), u
}

func (a *Actions) ChangePassword(ctx context.Context, s *session.Session, in forms.ChangePassword) Result {
	start := time.Now()
	if !s.Authenticated() {
		return a.finish(ctx, NameChangePassword, start, a.unauthenticated(ctx, NameChangePassword))
	}

	err := a.clients.ForSession(s).ChangePassword(ctx, apiclient.UserChangePassword{
		Password:       in.Password,
		PasswordNew:    in.PasswordNew,
		PasswordRetype: in.PasswordRetype,
	})
	if err != nil {
		return a.finish(ctx, NameChangePassword, start, a.classify(ctx, NameChangePassword, err))
	}
	return a.finish(ctx, NameChangePassword, start, OK())
}

// DeleteAccount removes the session owner's account. The confirmation in
// in has already been checked against the session by validation. On OK
// the caller must clear the session.
func (a *Actions) DeleteAccount(ctx context.Context, s *session.Session, in forms.DeleteAccount) Result {
	start := time.Now()
	if !s.Authenticated() {
		return a.finish(ctx, NameDeleteAccount, start, a.unauthenticated(ctx, NameDeleteAccount))
	}

	if err := a.clients.ForSession(s).DeleteAccount(ctx); err != nil {
		return a.finish(ctx, NameDeleteAccount, start, a.classify(ctx, NameDeleteAccount, err))
	}
	a.log(ctx).Info(ctx, "account deleted", "user", in.Username)
	return a.finish(ctx, NameDeleteAccount, start, OK())
}

func (a *Actions) CurrentUser(ctx context.Context, s *session.Session) (Result, *apiclient.UserCurrent) {
	start := time.Now()
	if !s.Authenticated() {
		return a.finish(ctx, NameCurrentUser, start, a.unauthenticated(ctx, NameCurrentUser)), nil
	}

	u, err := a.clients.ForSession(s).CurrentUser(ctx)
	if err != nil {
		return a.finish(ctx, NameCurrentUser, start, a.classify(ctx, NameCurrentUser, err)), nil
	}
	return a.finish(ctx, NameCurrentUser, start, OK()), u
}

// classify folds an API error into a Result. Field-keyed rejections pass
// through verbatim, everything else is logged and collapsed.
func (a *Actions) classify(ctx context.Context, action string, err error) Result {
	if fields, ok := apiclient.AsFieldError(err); ok {
		return FieldError(fields)
	}
	a.log(ctx).Error(ctx, "action failed", "action", action, "error", err)
	return Opaque()
}

func (a *Actions) unauthenticated(ctx context.Context, action string) Result {
	a.log(ctx).Warn(ctx, "action requires a session", "action", action)
	return Opaque()
}

func (a *Actions) finish(ctx context.Context, action string, start time.Time, r Result) Result {
	elapsed := time.Since(start)
	if a.observer != nil {
		a.observer.ObserveAction(action, r.Kind.String(), elapsed)
	}
	a.log(ctx).Debug(ctx, "action finished", "action", action, "outcome", r.Kind.String(), "elapsed", elapsed)
	return r
}

func (a *Actions) log(ctx context.Context) logging.Logger {
	return logging.FromContext(ctx, a.logger)
}
