package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/authbridge/internal/actions"
	"github.com/dmitrijs2005/authbridge/internal/forms"
	"github.com/dmitrijs2005/authbridge/internal/logging"
	"github.com/dmitrijs2005/authbridge/internal/session"
)

func (s *HTTPServer) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{OK: true})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var in forms.Login
	if !decodeForm(w, r, &in) {
		return
	}
	ctx := r.Context()

	res, sess := s.actions.Login(ctx, in)
	if !res.IsOK() {
		writeResult(w, res, forms.LoginBindings)
		return
	}

	if err := s.sessions.Renew(w, r, sess); err != nil {
		logging.FromContext(ctx, s.logger).Error(ctx, "session save failed", "error", err)
		writeJSON(w, http.StatusBadGateway, response{OK: false})
		return
	}
	writeJSON(w, http.StatusOK, response{OK: true, User: sessionUser(sess)})
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.actions.Logout(ctx, session.FromContext(ctx))
	s.clearSession(w, r)
	writeJSON(w, http.StatusOK, response{OK: true})
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var in forms.Register
	if !decodeForm(w, r, &in) {
		return
	}
	writeResult(w, s.actions.Register(r.Context(), in), forms.RegisterBindings)
}

func (s *HTTPServer) sessionStatus(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	authenticated := sess != nil
	writeJSON(w, http.StatusOK, response{OK: true, Authenticated: &authenticated, User: sessionUser(sess)})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, u := s.actions.CurrentUser(ctx, session.FromContext(ctx))
	if !res.IsOK() {
		writeResult(w, res, nil)
		return
	}
	writeJSON(w, http.StatusOK, response{OK: true, User: viewOf(u)})
}

func (s *HTTPServer) profile(w http.ResponseWriter, r *http.Request) {
	var in forms.Profile
	if !decodeForm(w, r, &in) {
		return
	}
	ctx := r.Context()

	res, u := s.actions.Profile(ctx, session.FromContext(ctx), in)
	if !res.IsOK() {
		writeResult(w, res, forms.ProfileBindings)
		return
	}
	writeJSON(w, http.StatusOK, response{OK: true, User: viewOf(u)})
}

func (s *HTTPServer) changePassword(w http.ResponseWriter, r *http.Request) {
	var in forms.ChangePassword
	if !decodeForm(w, r, &in) {
		return
	}
	ctx := r.Context()
	writeResult(w, s.actions.ChangePassword(ctx, session.FromContext(ctx), in), forms.ChangePasswordBindings)
}

func (s *HTTPServer) deleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.FromContext(ctx)

	var in forms.DeleteAccount
	if !decodeFormWith(w, r, &in, func() { in.UsernameCurrent = sess.User.Username }) {
		return
	}

	res := s.actions.DeleteAccount(ctx, sess, in)
	if res.Kind == actions.KindOK {
		s.clearSession(w, r)
	}
	writeResult(w, res, forms.DeleteAccountBindings)
}

func (s *HTTPServer) clearSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(w, r); err != nil {
		ctx := r.Context()
		logging.FromContext(ctx, s.logger).Error(ctx, "session clear failed", "error", err)
	}
}
