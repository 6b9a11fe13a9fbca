package apiclient_test

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/apiclient"
	"github.com/dmitrijs2005/authbridge/internal/apitest"
	"github.com/dmitrijs2005/authbridge/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresher_AgainstAPI(t *testing.T) {
	api := apitest.New()
	defer api.Close()
	id := api.AddUser("johndoe", "secret123")

	f, err := apiclient.NewFactoryWithClient(api.BaseURL(), api.Client(), "")
	require.NoError(t, err)
	r := session.NewRefresher(f.Anonymous(), 30*time.Second)

	// access token inside the leeway window
	pair, err := api.IssuePair(id, 10*time.Second, time.Hour)
	require.NoError(t, err)
	s, err := session.New(pair, "johndoe")
	require.NoError(t, err)

	got, refreshed, err := r.Resolve(context.Background(), s)
	require.NoError(t, err)
	require.True(t, refreshed)
	assert.NotEqual(t, s.AccessToken, got.AccessToken)
	assert.Equal(t, s.RefreshToken, got.RefreshToken, "refresh token kept when not rotated")
	assert.Equal(t, 1, api.Calls(apitest.RouteTokenRefresh))

	// the refreshed token is accepted by the API
	u, err := f.ForSession(got).CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "johndoe", u.Username)
}

func TestRefresher_AgainstAPI_Rotation(t *testing.T) {
	api := apitest.New()
	defer api.Close()
	api.RotateRefresh = true
	id := api.AddUser("johndoe", "secret123")

	f, err := apiclient.NewFactoryWithClient(api.BaseURL(), api.Client(), "")
	require.NoError(t, err)
	r := session.NewRefresher(f.Anonymous(), 30*time.Second)

	pair, err := api.IssuePair(id, -time.Second, time.Hour)
	require.NoError(t, err)
	s, err := session.New(pair, "johndoe")
	require.NoError(t, err)

	got, refreshed, err := r.Resolve(context.Background(), s)
	require.NoError(t, err)
	require.True(t, refreshed)
	assert.NotEqual(t, s.RefreshToken, got.RefreshToken)
}

func TestRefresher_AgainstAPI_DeletedUser(t *testing.T) {
	api := apitest.New()
	defer api.Close()
	id := api.AddUser("johndoe", "secret123")

	f, err := apiclient.NewFactoryWithClient(api.BaseURL(), api.Client(), "")
	require.NoError(t, err)
	pair, err := api.IssuePair(id, -time.Second, time.Hour)
	require.NoError(t, err)
	s, err := session.New(pair, "johndoe")
	require.NoError(t, err)

	require.NoError(t, f.ForSession(&session.Session{AccessToken: mustFresh(t, api, id)}).DeleteAccount(context.Background()))

	_, _, err = session.NewRefresher(f.Anonymous(), 0).Resolve(context.Background(), s)
	assert.ErrorIs(t, err, session.ErrExpired)
}

func mustFresh(t *testing.T, api *apitest.Server, id int64) string {
	t.Helper()
	pair, err := api.IssuePair(id, time.Minute, time.Hour)
	require.NoError(t, err)
	return pair.Access
}
