// Package apitest runs an in-process stand-in for the REST API: the token
// endpoints and the /users/ resource, with real signed JWTs. It backs the
// tests of every layer that talks to the API.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/common"
	"github.com/dmitrijs2005/authbridge/internal/tokens"
	"github.com/gorilla/mux"
)

// Route names, usable with Calls and FailNext.
const (
	RouteToken          = "token"
	RouteTokenRefresh   = "token_refresh"
	RouteUsers          = "users"
	RouteChangePassword = "change_password"
	RouteMe             = "me"
	RouteUpdateMe       = "update_me"
	RouteDeleteAccount  = "delete_account"
)

// Prefix is the API prefix every route lives under; BaseURL includes it.
const Prefix = "/api"

type user struct {
	id        int64
	username  string
	password  string
	firstName string
	lastName  string
}

type failure struct {
	status int
	body   string
}

// Server is the fake API. The zero value is not usable; call New.
type Server struct {
	srv *httptest.Server

	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// RotateRefresh makes the refresh endpoint issue a new refresh token
	// along with the access token.
	RotateRefresh bool

	mu       sync.Mutex
	users    map[string]*user
	nextID   int64
	calls    map[string]int
	failures map[string][]failure
}

func New() *Server {
	s := &Server{
		Secret:     []byte("apitest-signing-secret"),
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		users:      map[string]*user{},
		calls:      map[string]int{},
		failures:   map[string][]failure{},
	}

	r := mux.NewRouter()
	api := r.PathPrefix(Prefix).Subrouter()
	api.HandleFunc("/token/", s.track(RouteToken, s.obtainToken)).Methods(http.MethodPost)
	api.HandleFunc("/token/refresh/", s.track(RouteTokenRefresh, s.refreshToken)).Methods(http.MethodPost)
	api.HandleFunc("/users/", s.track(RouteUsers, s.createUser)).Methods(http.MethodPost)
	api.HandleFunc("/users/change-password/", s.track(RouteChangePassword, s.authed(s.changePassword))).Methods(http.MethodPost)
	api.HandleFunc("/users/me/", s.track(RouteMe, s.authed(s.me))).Methods(http.MethodGet)
	api.HandleFunc("/users/me/", s.track(RouteUpdateMe, s.authed(s.updateMe))).Methods(http.MethodPatch)
	api.HandleFunc("/users/delete-account/", s.track(RouteDeleteAccount, s.authed(s.deleteAccount))).Methods(http.MethodDelete)

	s.srv = httptest.NewServer(r)
	return s
}

func (s *Server) Close() { s.srv.Close() }

// BaseURL is the API root including Prefix.
func (s *Server) BaseURL() string { return s.srv.URL + Prefix }

func (s *Server) Client() *http.Client { return s.srv.Client() }

// AddUser registers an active account and returns its ID.
func (s *Server) AddUser(username, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password)
}

func (s *Server) addUserLocked(username, password string) int64 {
	s.nextID++
	s.users[username] = &user{id: s.nextID, username: username, password: password}
	return s.nextID
}

// HasUser reports whether username exists.
func (s *Server) HasUser(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok
}

// Calls returns how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls counts every request the server has received.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// FailNext makes the next request to route answer with status and body
// instead of being handled. Failures queue up in order.
func (s *Server) FailNext(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, body: body})
}

// IssuePair signs a token pair for userID with explicit lifetimes.
func (s *Server) IssuePair(userID int64, accessTTL, refreshTTL time.Duration) (tokens.Pair, error) {
	access, err := tokens.Generate(userID, tokens.TypeAccess, s.Secret, accessTTL)
	if err != nil {
		return tokens.Pair{}, err
	}
	refresh, err := tokens.Generate(userID, tokens.TypeRefresh, s.Secret, refreshTTL)
	if err != nil {
		return tokens.Pair{}, err
	}
	return tokens.Pair{Access: access, Refresh: refresh}, nil
}

func (s *Server) track(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		var f *failure
		if q := s.failures[route]; len(q) > 0 {
			f = &q[0]
			s.failures[route] = q[1:]
		}
		s.mu.Unlock()

		if f != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		h(w, r)
	}
}

type authedHandler func(w http.ResponseWriter, r *http.Request, u *user)

func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeaderName), common.BearerScheme+" ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		claims, err := tokens.Verify(raw, s.Secret, tokens.TypeAccess)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, tokenNotValid())
			return
		}
		u := s.userByID(string(claims.UserID))
		if u == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "User not found", "code": "user_not_found"})
			return
		}
		h(w, r, u)
	}
}

func (s *Server) userByID(id string) *user {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if fmt.Sprint(u.id) == id {
			return u
		}
	}
	return nil
}

func tokenNotValid() map[string]string {
	return map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Invalid JSON"}})
		return false
	}
	return true
}
