package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/session"
	"github.com/dmitrijs2005/authbridge/internal/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded описывает последний запрос, полученный тестовым сервером.
type recorded struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

func newTestServer(t *testing.T, status int, respBody string) (*Factory, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Auth = r.Header.Get("Authorization")
		rec.Body = nil
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)

	f, err := NewFactory(srv.URL+"/api/", time.Second, "authbridge-test")
	require.NoError(t, err)
	return f, rec
}

func TestFactory_ForSessionAttachesBearer(t *testing.T) {
	f, rec := newTestServer(t, http.StatusOK, `{"username":"pilot01","first_name":"Amelia","last_name":"E"}`)

	u, err := f.ForSession(&session.Session{AccessToken: "acc-1", RefreshToken: "ref-1"}).CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer acc-1", rec.Auth)
	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/api/users/me/", rec.Path)
	assert.Equal(t, &UserCurrent{Username: "pilot01", FirstName: "Amelia", LastName: "E"}, u)
}

func TestFactory_NilSessionIsAnonymous(t *testing.T) {
	f, rec := newTestServer(t, http.StatusCreated, `{"username":"pilot01"}`)

	err := f.ForSession(nil).CreateUser(context.Background(), UserCreate{Username: "pilot01", Password: "p", PasswordRetype: "p"})
	require.NoError(t, err)
	assert.Empty(t, rec.Auth)
	assert.Equal(t, "/api/users/", rec.Path)
	assert.Equal(t, map[string]any{"username": "pilot01", "password": "p", "password_retype": "p"}, rec.Body)
}

func TestNewFactory_RejectsBadURL(t *testing.T) {
	_, err := NewFactory("api:8000", time.Second, "")
	require.Error(t, err)
	_, err = NewFactory("ftp://api", time.Second, "")
	require.Error(t, err)
}

func TestClient_Endpoints(t *testing.T) {
	first := "Amelia"
	tests := []struct {
		name       string
		call       func(c API) error
		wantMethod string
		wantPath   string
		wantBody   map[string]any
	}{
		{
			name: "obtain token",
			call: func(c API) error {
				_, err := c.ObtainToken(context.Background(), "pilot01", "secret123")
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/token/",
			wantBody:   map[string]any{"username": "pilot01", "password": "secret123"},
		},
		{
			name: "refresh token",
			call: func(c API) error {
				_, err := c.RefreshToken(context.Background(), "ref-1")
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/token/refresh/",
			wantBody:   map[string]any{"refresh": "ref-1"},
		},
		{
			name: "change password",
			call: func(c API) error {
				return c.ChangePassword(context.Background(), UserChangePassword{Password: "a", PasswordNew: "b", PasswordRetype: "b"})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/api/users/change-password/",
			wantBody:   map[string]any{"password": "a", "password_new": "b", "password_retype": "b"},
		},
		{
			name: "partial profile update omits nil fields",
			call: func(c API) error {
				_, err := c.UpdateCurrentUser(context.Background(), PatchedUserCurrent{FirstName: &first})
				return err
			},
			wantMethod: http.MethodPatch,
			wantPath:   "/api/users/me/",
			wantBody:   map[string]any{"first_name": "Amelia"},
		},
		{
			name:       "delete account",
			call:       func(c API) error { return c.DeleteAccount(context.Background()) },
			wantMethod: http.MethodDelete,
			wantPath:   "/api/users/delete-account/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, rec := newTestServer(t, http.StatusOK, `{}`)
			require.NoError(t, tt.call(f.ForSession(&session.Session{AccessToken: "acc"})))
			assert.Equal(t, tt.wantMethod, rec.Method)
			assert.Equal(t, tt.wantPath, rec.Path)
			assert.Equal(t, tt.wantBody, rec.Body)
		})
	}
}

func TestClient_ObtainTokenDecodesPair(t *testing.T) {
	f, _ := newTestServer(t, http.StatusOK, `{"access":"A","refresh":"R"}`)

	pair, err := f.Anonymous().ObtainToken(context.Background(), "pilot01", "secret123")
	require.NoError(t, err)
	assert.Equal(t, tokens.Pair{Access: "A", Refresh: "R"}, pair)
}

func TestClient_EmptySuccessBody(t *testing.T) {
	f, _ := newTestServer(t, http.StatusNoContent, ``)
	require.NoError(t, f.ForSession(&session.Session{AccessToken: "acc"}).DeleteAccount(context.Background()))
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		wantFields      FieldErrors
		wantUnauth      bool
		wantUnavailable bool
	}{
		{
			name:       "field errors",
			status:     http.StatusBadRequest,
			body:       `{"username":["A user with that username already exists."],"password":["Too short.","Too common."]}`,
			wantFields: FieldErrors{"username": {"A user with that username already exists."}, "password": {"Too short.", "Too common."}},
		},
		{
			name:       "field-shaped 401 stays field error",
			status:     http.StatusUnauthorized,
			body:       `{"password":["invalid current password"]}`,
			wantFields: FieldErrors{"password": {"invalid current password"}},
		},
		{
			name:       "detail string is unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"detail":"No active account found with the given credentials"}`,
			wantUnauth: true,
		},
		{
			name:   "mixed shapes are opaque",
			status: http.StatusBadRequest,
			body:   `{"username":["taken"],"code":"invalid"}`,
		},
		{
			name:   "empty object is opaque",
			status: http.StatusBadRequest,
			body:   `{}`,
		},
		{
			name:            "field-shaped 500 stays opaque",
			status:          http.StatusInternalServerError,
			body:            `{"error":["database is down"]}`,
			wantUnavailable: true,
		},
		{
			name:            "server error",
			status:          http.StatusBadGateway,
			body:            `<html>bad gateway</html>`,
			wantUnavailable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := newTestServer(t, tt.status, tt.body)
			err := f.Anonymous().CreateUser(context.Background(), UserCreate{})
			require.Error(t, err)

			fields, ok := AsFieldError(err)
			assert.Equal(t, tt.wantFields != nil, ok)
			assert.Equal(t, tt.wantFields, fields)
			assert.Equal(t, tt.wantUnauth, errors.Is(err, ErrUnauthorized))
			assert.Equal(t, tt.wantUnavailable, errors.Is(err, ErrUnavailable))

			if !ok {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.status, se.Status)
			}
		})
	}
}

func TestClient_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	f, err := NewFactory(srv.URL, time.Second, "")
	require.NoError(t, err)

	_, err = f.Anonymous().ObtainToken(context.Background(), "u", "p")
	require.ErrorIs(t, err, ErrUnavailable)
}
