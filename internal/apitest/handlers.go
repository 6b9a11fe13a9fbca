package apitest

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/authbridge/internal/tokens"
)

const minPasswordLength = 8

func blank(w http.ResponseWriter, fields ...string) bool {
	errs := map[string][]string{}
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			errs[fields[i]] = []string{"This field may not be blank."}
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return true
	}
	return false
}

func (s *Server) obtainToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) || blank(w, "username", in.Username, "password", in.Password) {
		return
	}

	s.mu.Lock()
	u, ok := s.users[in.Username]
	s.mu.Unlock()
	if !ok || u.password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}

	pair, err := s.IssuePair(u.id, s.AccessTTL, s.RefreshTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if !decode(w, r, &in) || blank(w, "refresh", in.Refresh) {
		return
	}

	claims, err := tokens.Verify(in.Refresh, s.Secret, tokens.TypeRefresh)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, tokenNotValid())
		return
	}
	id, err := strconv.ParseInt(string(claims.UserID), 10, 64)
	if err != nil || s.userByID(string(claims.UserID)) == nil {
		writeJSON(w, http.StatusUnauthorized, tokenNotValid())
		return
	}

	pair, err := s.IssuePair(id, s.AccessTTL, s.RefreshTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	if !s.RotateRefresh {
		pair.Refresh = ""
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username       string `json:"username"`
		Password       string `json:"password"`
		PasswordRetype string `json:"password_retype"`
	}
	if !decode(w, r, &in) || blank(w, "username", in.Username, "password", in.Password, "password_retype", in.PasswordRetype) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[in.Username]; exists {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"A user with that username already exists."}})
		return
	}
	if len(in.Password) < minPasswordLength {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Password does not meet all requirements."}})
		return
	}
	if in.Password != in.PasswordRetype {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Password are not matching."}})
		return
	}

	s.addUserLocked(in.Username, in.Password)
	writeJSON(w, http.StatusCreated, map[string]string{"username": in.Username})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request, u *user) {
	var in struct {
		Password       string `json:"password"`
		PasswordNew    string `json:"password_new"`
		PasswordRetype string `json:"password_retype"`
	}
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case u.password != in.Password:
		writeJSON(w, http.StatusBadRequest, map[string][]string{"password": {"Current password is not matching"}})
	case len(in.PasswordNew) < minPasswordLength:
		writeJSON(w, http.StatusBadRequest, map[string][]string{"password_new": {"This password is too short. It must contain at least 8 characters."}})
	case in.PasswordNew != in.PasswordRetype:
		writeJSON(w, http.StatusBadRequest, map[string][]string{"password_retype": {"Password does not meet all requirements"}})
	case in.PasswordNew == in.Password:
		writeJSON(w, http.StatusBadRequest, map[string][]string{"password_new": {"Both new and current passwords are same"}})
	default:
		u.password = in.PasswordNew
		writeJSON(w, http.StatusOK, map[string]string{"password_new": "********"})
	}
}

type userCurrent struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	out := userCurrent{Username: u.username, FirstName: u.firstName, LastName: u.lastName}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request, u *user) {
	var in struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	if in.FirstName != nil {
		u.firstName = *in.FirstName
	}
	if in.LastName != nil {
		u.lastName = *in.LastName
	}
	out := userCurrent{Username: u.username, FirstName: u.firstName, LastName: u.lastName}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteAccount(w http.ResponseWriter, _ *http.Request, u *user) {
	s.mu.Lock()
	delete(s.users, u.username)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
