package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/authbridge/internal/actions"
	"github.com/dmitrijs2005/authbridge/internal/apiclient"
	"github.com/dmitrijs2005/authbridge/internal/buildinfo"
	"github.com/dmitrijs2005/authbridge/internal/client/config"
	"github.com/dmitrijs2005/authbridge/internal/client/storage"
	"github.com/dmitrijs2005/authbridge/internal/common"
	"github.com/dmitrijs2005/authbridge/internal/forms"
	"github.com/dmitrijs2005/authbridge/internal/logging"
	"github.com/dmitrijs2005/authbridge/internal/session"
	"github.com/spf13/pflag"
)

const (
	exitFailure  = 1
	exitRejected = 2
	exitAuth     = 3
	exitConfig   = 4
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

var errNotLoggedIn = &exitErr{code: exitAuth, msg: "not logged in, run `authbridgectl login` first"}

type App struct {
	config config.Config

	in     *bufio.Reader
	inFd   int
	out    io.Writer
	errOut io.Writer

	logger    logging.Logger
	db        *sql.DB
	sessions  *storage.SessionStore
	actions   *actions.Actions
	refresher *session.Refresher
}

func newApp(in io.Reader, out, errOut io.Writer) *App {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	a := &App{in: bufio.NewReader(in), inFd: fd, out: out, errOut: errOut, logger: logging.Nop{}}
	a.config.LoadDefaults()
	return a
}

// open resolves the configuration and wires the API client, the local
// store and the actions. It runs once per invocation, before the command.
func (a *App) open(ctx context.Context, fs *pflag.FlagSet) error {
	if err := config.Resolve(fs, &a.config); err != nil {
		return codeError(exitConfig, "invalid configuration: %s", err)
	}

	logger, err := logging.NewJSONLogger(a.errOut, a.config.LogLevel)
	if err != nil {
		return codeError(exitConfig, "invalid configuration: %s", err)
	}
	a.logger = logger

	factory, err := apiclient.NewFactory(a.config.APIBaseURL, a.config.RequestTimeout, buildinfo.UserAgent("authbridgectl"))
	if err != nil {
		return codeError(exitConfig, "invalid configuration: %s", err)
	}

	db, err := storage.Open(ctx, a.config.DBPath)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	a.db = db
	a.sessions = storage.NewSessionStore(db)
	a.actions = actions.New(factory, logger, nil)
	a.refresher = session.NewRefresher(factory.Anonymous(), a.config.RefreshLeeway)

	a.logger.Debug(ctx, "client ready", "api", a.config.APIBaseURL, "db", a.config.DBPath)
	return nil
}

func (a *App) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// requireSession loads the saved session and renews it when due. A renewed
// pair is written back before the command proceeds; an expired session is
// forgotten.
func (a *App) requireSession(ctx context.Context) (*session.Session, error) {
	stored, err := a.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errNotLoggedIn
	}

	s, refreshed, err := a.refresher.Resolve(ctx, stored)
	switch {
	case errors.Is(err, session.ErrExpired):
		if cerr := a.sessions.Clear(ctx); cerr != nil {
			a.logger.Error(ctx, "clear expired session", "error", cerr)
		}
		return nil, codeError(exitAuth, "session expired, log in again")
	case errors.Is(err, common.ErrUnavailable), errors.Is(err, session.ErrRefreshUnavailable):
		return nil, codeError(exitFailure, "the API is unavailable, try again later")
	case err != nil:
		return nil, err
	}

	if refreshed {
		if err := a.sessions.Save(ctx, s); err != nil {
			return nil, err
		}
		a.logger.Debug(ctx, "session refreshed", "user", s.User.Username)
	}
	return s, nil
}

// check validates form and prints any violations.
func (a *App) check(form any) error {
	errs := forms.Validate(form)
	if errs == nil {
		return nil
	}
	a.printErrors(errs)
	return codeError(exitRejected, "invalid input")
}

// report turns a non-OK result into an exit error. API field errors are
// printed against the form paths in b.
func (a *App) report(res actions.Result, b forms.Bindings, opaque string) error {
	switch res.Kind {
	case actions.KindOK:
		return nil
	case actions.KindFieldError:
		errs := forms.NewErrors()
		forms.Bind(res.Fields, b, errs)
		if errs.Empty() {
			errs.SetError(forms.RootPath, "Request was rejected")
		}
		a.printErrors(errs)
		return codeError(exitRejected, "request rejected")
	default:
		return codeError(exitFailure, "%s", opaque)
	}
}

func (a *App) printErrors(errs *forms.Errors) {
	for _, msg := range errs.Get(forms.RootPath) {
		fmt.Fprintf(a.errOut, "  %s\n", msg)
	}
	for _, path := range errs.Paths() {
		if path == forms.RootPath {
			continue
		}
		for _, msg := range errs.Get(path) {
			fmt.Fprintf(a.errOut, "  %s: %s\n", path, msg)
		}
	}
}

// prompt returns args[0] when given, otherwise asks for it.
func (a *App) prompt(args []string, label string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return GetSimpleText(a.in, label, a.out)
}

func (a *App) password(label string) ([]byte, error) {
	return GetPassword(a.in, a.inFd, label, a.out)
}
