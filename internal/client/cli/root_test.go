package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/apitest"
	"github.com/dmitrijs2005/authbridge/internal/client/storage"
	"github.com/dmitrijs2005/authbridge/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api *apitest.Server
	db  string
}

type outcome struct {
	code   int
	out    string
	errOut string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	stubTerminal(t, false, nil)

	api := apitest.New()
	t.Cleanup(api.Close)
	return &harness{api: api, db: filepath.Join(t.TempDir(), "ctl.db")}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) outcome {
	t.Helper()
	full := append([]string{"--api", h.api.BaseURL(), "--db", h.db}, args...)

	var out, errOut bytes.Buffer
	code := Execute(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return outcome{code: code, out: out.String(), errOut: errOut.String()}
}

func (h *harness) login(t *testing.T, username, password string) {
	t.Helper()
	o := h.run(t, password+"\n", "login", username)
	require.Equal(t, 0, o.code, o.errOut)
}

func (h *harness) saved(t *testing.T) *session.Session {
	t.Helper()
	db, err := storage.Open(context.Background(), h.db)
	require.NoError(t, err)
	defer db.Close()
	s, err := storage.NewSessionStore(db).Load(context.Background())
	require.NoError(t, err)
	return s
}

func TestLogin_SavesSession(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("alice01", "password123")

	o := h.run(t, "password123\n", "login", "alice01")
	require.Equal(t, 0, o.code, o.errOut)
	assert.Contains(t, o.out, "Logged in as alice01")

	s := h.saved(t)
	require.NotNil(t, s)
	assert.Equal(t, "alice01", s.User.Username)

	o = h.run(t, "", "whoami")
	require.Equal(t, 0, o.code, o.errOut)
	assert.Contains(t, o.out, "Username:   alice01")
	assert.Contains(t, o.out, "First name: -")
}

func TestLogin_PromptsForUsername(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("alice01", "password123")

	o := h.run(t, "alice01\npassword123\n", "login")
	require.Equal(t, 0, o.code, o.errOut)
	assert.Contains(t, o.out, "Username\n> ")
	assert.Contains(t, o.out, "Password: ")
}

func TestLogin_Rejections(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("alice01", "password123")

	o := h.run(t, "short\n", "login", "alice01")
	assert.Equal(t, exitRejected, o.code)
	assert.Contains(t, o.errOut, "password: Password must be at least 8 characters")
	assert.Zero(t, h.api.TotalCalls(), "invalid input never reaches the API")

	o = h.run(t, "wrongpass1\n", "login", "alice01")
	assert.Equal(t, exitFailure, o.code)
	assert.Contains(t, o.errOut, "login failed")
	assert.Nil(t, h.saved(t))
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("taken01", "password123")

	tests := []struct {
		name     string
		args     []string
		stdin    string
		wantCode int
		wantErr  string
	}{
		{"mismatch", []string{"bob001"}, "password123\npassword124\n", exitRejected, "passwordRetype: Passwords are not matching"},
		{"api root error", []string{"bob001"}, "abcdef\nabcdef\n", exitRejected, "  Password does not meet all requirements."},
		{"api field error", []string{"taken01"}, "password123\npassword123\n", exitRejected, "username: A user with that username already exists."},
		{"ok", []string{"bob001"}, "password123\npassword123\n", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := h.run(t, tt.stdin, append([]string{"register"}, tt.args...)...)
			assert.Equal(t, tt.wantCode, o.code, o.errOut)
			if tt.wantErr != "" {
				assert.Contains(t, o.errOut, tt.wantErr)
			}
		})
	}
	assert.True(t, h.api.HasUser("bob001"))
}

func TestAccountCommands_RequireLogin(t *testing.T) {
	h := newHarness(t)

	for _, args := range [][]string{{"whoami"}, {"change-password"}, {"delete-account"}, {"profile", "--first-name", "A"}} {
		o := h.run(t, "", args...)
		assert.Equal(t, exitAuth, o.code, args)
		assert.Contains(t, o.errOut, "not logged in")
	}
	assert.Zero(t, h.api.TotalCalls())
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("alice01", "password123")
	h.login(t, "alice01", "password123")

	o := h.run(t, "", "profile")
	assert.Equal(t, exitRejected, o.code)
	assert.Contains(t, o.errOut, "nothing to update")

	o = h.run(t, "", "profile", "--first-name", strings.Repeat("x", 151))
	assert.Equal(t, exitRejected, o.code)
	assert.Contains(t, o.errOut, "firstName:")
	assert.Zero(t, h.api.Calls(apitest.RouteUpdateMe))

	o = h.run(t, "", "profile", "--first-name", "Alice")
	require.Equal(t, 0, o.code, o.errOut)
	assert.Contains(t, o.out, "First name: Alice")
	assert.Contains(t, o.out, "Last name:  -")
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("alice01", "password123")
	h.login(t, "alice01", "password123")

	o := h.run(t, "wrongpass1\nnewpassword1\nnewpassword1\n", "change-password")
	assert.Equal(t, exitRejected, o.code)
	assert.Contains(t, o.errOut, "password: Current password is not matching")

	o = h.run(t, "password123\npassword123\npassword123\n", "change-password")
	assert.Equal(t, exitRejected, o.code)
	assert.Contains(t, o.errOut, "passwordNew: Both new and current passwords are same")

	o = h.run(t, "password123\nnewpassword1\nnewpassword1\n", "change-password")
	require.Equal(t, 0, o.code, o.errOut)
	assert.Contains(t, o.out, "Password changed")

	h.login(t, "alice01", "newpassword1")
}

func TestDeleteAccount(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("alice01", "password123")
	h.login(t, "alice01", "password123")

	o := h.run(t, "someone-else\n", "delete-account")
	assert.Equal(t, exitRejected, o.code)
	assert.Contains(t, o.errOut, "username: Username is not matching")
	assert.Zero(t, h.api.Calls(apitest.RouteDeleteAccount))

	o = h.run(t, "alice01\n", "delete-account")
	require.Equal(t, 0, o.code, o.errOut)
	assert.Contains(t, o.out, "Account deleted")
	assert.False(t, h.api.HasUser("alice01"))
	assert.Nil(t, h.saved(t))
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("alice01", "password123")
	h.login(t, "alice01", "password123")

	o := h.run(t, "", "logout")
	require.Equal(t, 0, o.code, o.errOut)
	assert.Contains(t, o.out, "Logged out")
	assert.Nil(t, h.saved(t))

	o = h.run(t, "", "logout")
	require.Equal(t, 0, o.code)
	assert.Contains(t, o.out, "Not logged in")
	assert.Equal(t, 1, h.api.TotalCalls(), "logout never calls the API")
}

func TestSession_RefreshedAndPersisted(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("alice01", "password123")
	h.api.AccessTTL = 10 * time.Second // inside the default 30s leeway
	h.api.RotateRefresh = true
	h.login(t, "alice01", "password123")
	before := h.saved(t)

	o := h.run(t, "", "whoami")
	require.Equal(t, 0, o.code, o.errOut)
	assert.Equal(t, 1, h.api.Calls(apitest.RouteTokenRefresh))

	after := h.saved(t)
	require.NotNil(t, after)
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.NotEqual(t, before.RefreshToken, after.RefreshToken)
}

func TestSession_ExpiredIsForgotten(t *testing.T) {
	h := newHarness(t)
	id := h.api.AddUser("alice01", "password123")

	pair, err := h.api.IssuePair(id, -time.Minute, -time.Second)
	require.NoError(t, err)
	s, err := session.New(pair, "alice01")
	require.NoError(t, err)

	db, err := storage.Open(context.Background(), h.db)
	require.NoError(t, err)
	require.NoError(t, storage.NewSessionStore(db).Save(context.Background(), s))
	require.NoError(t, db.Close())

	o := h.run(t, "", "whoami")
	assert.Equal(t, exitAuth, o.code)
	assert.Contains(t, o.errOut, "session expired")
	assert.Zero(t, h.api.TotalCalls())
	assert.Nil(t, h.saved(t))
}

func TestConfig(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("alice01", "password123")

	o := h.run(t, "", "--api", "nope", "whoami")
	assert.Equal(t, exitConfig, o.code)
	assert.Contains(t, o.errOut, "invalid configuration")

	cfg := filepath.Join(t.TempDir(), "ctl.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("api_base_url: "+h.api.BaseURL()+"\n"), 0o600))

	var out, errOut bytes.Buffer
	code := Execute(context.Background(), []string{"-c", cfg, "--db", h.db, "login", "alice01"},
		strings.NewReader("password123\n"), &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
}

func TestHelpDoesNotTouchStore(t *testing.T) {
	h := newHarness(t)

	o := h.run(t, "", "--help")
	require.Equal(t, 0, o.code)
	assert.Contains(t, o.out, "change-password")

	_, err := os.Stat(h.db)
	assert.True(t, os.IsNotExist(err))
}
