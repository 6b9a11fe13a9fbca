package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router builds the route table.
//
//	POST  /auth/login              login and save the session
//	POST  /auth/logout             clear the session
//	POST  /auth/register           create an account
//	GET   /auth/session            session status
//	GET   /account/me              current user          (session)
//	PATCH /account/profile         update names          (session)
//	POST  /account/change-password                       (session)
//	POST  /account/delete          delete, then clear    (session)
//	GET   /healthz
//	GET   /metrics
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.instrument)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	auth := r.PathPrefix("/auth").Subrouter()
	auth.Use(s.sessions.Middleware)
	auth.HandleFunc("/login", s.login).Methods(http.MethodPost)
	auth.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	auth.HandleFunc("/register", s.register).Methods(http.MethodPost)
	auth.HandleFunc("/session", s.sessionStatus).Methods(http.MethodGet)

	account := r.PathPrefix("/account").Subrouter()
	account.Use(s.sessions.Middleware, requireSession)
	account.HandleFunc("/me", s.me).Methods(http.MethodGet)
	account.HandleFunc("/profile", s.profile).Methods(http.MethodPatch)
	account.HandleFunc("/change-password", s.changePassword).Methods(http.MethodPost)
	account.HandleFunc("/delete", s.deleteAccount).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, response{OK: false})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, response{OK: false})
	})
	return r
}
