// ABOUTME: Tests for the process-wide session against the fake backend
// ABOUTME: Covers login, restore, token refresh, logout, onboarding, registration and settings checks
package session

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/api/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func setup(t *testing.T) (*apitest.Server, *api.Client, *FileStore) {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.RequireAuth = true
	srv.AddUser("ada@example.com", "secret-pass", "Ada", "Lovelace", 1)
	store := &FileStore{Path: filepath.Join(t.TempDir(), "salescrm", "credentials.json")}
	return srv, api.NewClient(api.Options{BaseURL: srv.URL}), store
}

func TestInitWithoutCredentials(t *testing.T) {
	_, client, store := setup(t)
	s := New(client, store, nil)

	require.NoError(t, s.Init(context.Background()))
	assert.False(t, s.IsLoggedIn())
	_, ok := s.User()
	assert.False(t, ok)
	assert.Same(t, client, s.Client())
}

func TestLoginPersistsAndRestores(t *testing.T) {
	srv, client, store := setup(t)
	ctx := context.Background()

	s := New(client, store, nil)
	user, err := s.Login(ctx, "ada@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.FullName())
	assert.True(t, s.IsLoggedIn())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", saved.Username)
	assert.Equal(t, client.BaseURL(), saved.BaseURL)
	assert.NotEmpty(t, saved.Refresh)

	restored := New(client, store, nil)
	require.NoError(t, restored.Init(ctx))
	assert.True(t, restored.IsLoggedIn())
	got, _ := restored.User()
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, 2, srv.CountRequests(http.MethodGet, "/api/v1/me/"), "one /me per login and one per restore")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, client, store := setup(t)
	s := New(client, store, nil)

	_, err := s.Login(context.Background(), "ada@example.com", "nope")
	require.Error(t, err)
	assert.False(t, s.IsLoggedIn())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, err = s.Login(context.Background(), " ", "")
	assert.Error(t, err)
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	srv, client, store := setup(t)
	srv.AccessTTL = 5 * time.Second

	s := New(client, store, nil)
	_, err := s.Login(context.Background(), "ada@example.com", "secret-pass")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, srv.Refreshes(), 1)

	_, err = s.Client().Leads().List(context.Background(), api.ListParams{Page: 1})
	require.NoError(t, err)

	req, ok := srv.LastRequest(http.MethodGet, "/api/v1/leads/")
	require.True(t, ok)
	assert.Contains(t, req.Auth, "Bearer ")
}

func TestInitClearsRejectedCredentials(t *testing.T) {
	_, client, store := setup(t)
	require.NoError(t, store.Save(&Credentials{Username: "ada@example.com", Access: "bogus", BaseURL: client.BaseURL()}))

	s := New(client, store, nil)
	require.NoError(t, s.Init(context.Background()))
	assert.False(t, s.IsLoggedIn())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestInitIgnoresOtherBackend(t *testing.T) {
	srv, client, store := setup(t)
	require.NoError(t, store.Save(&Credentials{Access: "x", BaseURL: "https://elsewhere.test"}))

	s := New(client, store, nil)
	require.NoError(t, s.Init(context.Background()))
	assert.False(t, s.IsLoggedIn())
	assert.Empty(t, srv.Requests())
}

func TestLogout(t *testing.T) {
	_, client, store := setup(t)
	s := New(client, store, nil)
	_, err := s.Login(context.Background(), "ada@example.com", "secret-pass")
	require.NoError(t, err)

	require.NoError(t, s.Logout())
	assert.False(t, s.IsLoggedIn())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.NoError(t, s.Logout(), "logging out twice is fine")
}

func TestCreateOrganization(t *testing.T) {
	srv, client, store := setup(t)
	srv.AddUser("new@example.com", "secret-pass", "New", "User", 0)
	ctx := context.Background()

	s := New(client, store, nil)
	_, err := s.CreateOrganization(ctx, "Acme", "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	user, err := s.Login(ctx, "new@example.com", "secret-pass")
	require.NoError(t, err)
	assert.False(t, user.HasOrganization())

	_, err = s.CreateOrganization(ctx, "  ", "")
	assert.Error(t, err)

	org, err := s.CreateOrganization(ctx, "Acme", "Rockets")
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)

	user2, _ := s.User()
	assert.True(t, user2.HasOrganization())

	_, err = s.CreateOrganization(ctx, "Again", "")
	assert.ErrorContains(t, err, "already belong")
}

func TestRegisterChecks(t *testing.T) {
	srv, client, store := setup(t)
	s := New(client, store, nil)

	valid := api.Registration{
		Email: "grace@example.com", Password: "longenough", ConfirmPassword: "longenough",
		FirstName: "Grace", LastName: "Hopper",
	}

	cases := []struct {
		name   string
		mutate func(r *api.Registration)
		want   string
	}{
		{"mismatch", func(r *api.Registration) { r.ConfirmPassword = "different" }, "Passwords do not match"},
		{"short", func(r *api.Registration) { r.Password, r.ConfirmPassword = "short", "short" }, "Password must be at least 8 characters long"},
		{"names", func(r *api.Registration) { r.LastName = " " }, "First name and last name are required"},
		{"org name", func(r *api.Registration) { r.CreateOrganization = true }, "Organization name is required when creating an organization"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := valid
			tc.mutate(&reg)
			_, err := s.Register(context.Background(), reg)
			var inErr *InputError
			require.True(t, errors.As(err, &inErr))
			assert.Equal(t, tc.want, inErr.Message)
		})
	}
	assert.Equal(t, 0, srv.CountRequests(http.MethodPost, "/api/v1/register/"))

	user, err := s.Register(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.False(t, s.IsLoggedIn(), "registration does not log in")
}

func TestSettings(t *testing.T) {
	_, client, store := setup(t)
	s := New(client, store, nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.ChangePassword(ctx, "a", "b", "b"), ErrNotLoggedIn)

	_, err := s.Login(ctx, "ada@example.com", "secret-pass")
	require.NoError(t, err)

	user, err := s.UpdateProfile(ctx, "Augusta", "King")
	require.NoError(t, err)
	assert.Equal(t, "Augusta King", user.FullName())
	cur, _ := s.User()
	assert.Equal(t, "Augusta", cur.FirstName)

	var inErr *InputError
	assert.ErrorAs(t, s.ChangePassword(ctx, "", "new-password", "new-password"), &inErr)
	assert.ErrorAs(t, s.ChangePassword(ctx, "secret-pass", "new-password", "other-password"), &inErr)
	assert.ErrorAs(t, s.ChangePassword(ctx, "secret-pass", "short", "short"), &inErr)

	require.NoError(t, s.ChangePassword(ctx, "secret-pass", "new-password", "new-password"))
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := &KeyringStore{}

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)

	creds := &Credentials{Username: "ada", Access: "a", Refresh: "r", BaseURL: "http://x"}
	require.NoError(t, store.Save(creds))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenPath(), s.(*FileStore).Path)

	s, err = NewStore("keyring", "")
	require.NoError(t, err)
	assert.IsType(t, &KeyringStore{}, s)

	_, err = NewStore("vault", "")
	assert.Error(t, err)
}

func TestAccessExpiry(t *testing.T) {
	assert.True(t, accessExpiry("not-a-jwt").IsZero())
}
