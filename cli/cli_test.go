// ABOUTME: Tests for the CLI commands against the fake backend
// ABOUTME: Covers login, record CRUD output, delete confirmation, dashboard and config persistence
package cli

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/api/apitest"
	"github.com/harperreed/salescrm/config"
	"github.com/harperreed/salescrm/logging"
	"github.com/harperreed/salescrm/query"
	"github.com/harperreed/salescrm/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCLI(t *testing.T, input string) (*Env, *apitest.Server, *bytes.Buffer) {
	t.Helper()
	srv := apitest.NewServer(t)
	srv.AddUser("ada@example.com", "secret-pass", "Ada", "Lovelace", 1)

	store := &session.FileStore{Path: filepath.Join(t.TempDir(), "credentials.json")}
	sess := session.New(api.NewClient(api.Options{BaseURL: srv.URL}), store, logging.Discard())

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	env := &Env{
		Config:  cfg,
		Session: sess,
		Cache:   query.NewCache(),
		Logger:  logging.Discard(),
		Version: "test",
		Out:     out,
		In:      strings.NewReader(input),
	}
	return env, srv, out
}

func login(t *testing.T, env *Env, out *bytes.Buffer) {
	t.Helper()
	require.NoError(t, LoginCommand(env, []string{"--username", "ada@example.com", "--password", "secret-pass"}))
	out.Reset()
}

func TestLoginPromptsForPassword(t *testing.T) {
	env, _, out := setupTestCLI(t, "secret-pass\n")

	err := LoginCommand(env, []string{"--username", "ada@example.com"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Password: ")
	assert.Contains(t, out.String(), "✓ Logged in as Ada Lovelace")
	assert.True(t, env.Session.IsLoggedIn())

	out.Reset()
	require.NoError(t, WhoamiCommand(env, nil))
	assert.Contains(t, out.String(), "ada@example.com")

	require.NoError(t, LogoutCommand(env, nil))
	assert.False(t, env.Session.IsLoggedIn())
}

func TestLoginFailure(t *testing.T) {
	env, _, _ := setupTestCLI(t, "")

	err := LoginCommand(env, []string{"--username", "ada@example.com", "--password", "wrong"})
	require.Error(t, err)
	assert.False(t, env.Session.IsLoggedIn())
}

func TestRecordCommandsNeedLogin(t *testing.T) {
	env, _, _ := setupTestCLI(t, "")

	err := ListCommand(env, []string{"leads"})
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestListCommand(t *testing.T) {
	env, srv, out := setupTestCLI(t, "")
	login(t, env, out)
	srv.Seed("leads",
		apitest.Record{"name": "Grace Hopper", "email": "grace@navy.test", "status": "new"},
		apitest.Record{"name": "Alan Turing", "email": "alan@bletchley.test", "status": "qualified"},
	)

	require.NoError(t, ListCommand(env, []string{"leads"}))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "Grace Hopper")
	assert.Contains(t, out.String(), "Page 1 of 1 (2 leads)")

	out.Reset()
	require.NoError(t, ListCommand(env, []string{"leads", "--search", "turing"}))
	assert.Contains(t, out.String(), "Alan Turing")
	assert.NotContains(t, out.String(), "Grace Hopper")

	out.Reset()
	require.NoError(t, ListCommand(env, []string{"contacts"}))
	assert.Equal(t, "No contacts found.\n", out.String())

	assert.Error(t, ListCommand(env, []string{"widgets"}))
	assert.Error(t, ListCommand(env, nil))
}

func TestCreateCommand(t *testing.T) {
	env, srv, out := setupTestCLI(t, "")
	login(t, env, out)

	err := CreateCommand(env, []string{"leads", "--set", "email=x@y.test"})
	require.Error(t, err)
	assert.Equal(t, "Name is required", err.Error())
	assert.Equal(t, 0, srv.CountRequests(http.MethodPost, "/api/v1/leads/"))

	err = CreateCommand(env, []string{"leads", "--set", "name=Linus", "--set", "email=linus@x.test"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Lead created successfully")
	assert.Contains(t, out.String(), "ID: ")
	assert.Equal(t, 1, srv.Len("leads"))

	assert.Error(t, CreateCommand(env, []string{"leads", "--set", "novalue"}))
}

func TestGetAndUpdateCommands(t *testing.T) {
	env, srv, out := setupTestCLI(t, "")
	login(t, env, out)
	srv.Seed("accounts", apitest.Record{"id": 5, "name": "Initech", "industry": "Software"})

	require.NoError(t, GetCommand(env, []string{"accounts", "5"}))
	assert.Contains(t, out.String(), "Account #5: Initech")
	assert.Contains(t, out.String(), "Software")

	assert.Error(t, GetCommand(env, []string{"accounts", "abc"}))
	assert.ErrorIs(t, GetCommand(env, []string{"accounts", "77"}), api.ErrNotFound)

	assert.Error(t, UpdateCommand(env, []string{"accounts", "5"}))

	out.Reset()
	require.NoError(t, UpdateCommand(env, []string{"accounts", "5", "--set", "industry=Printers"}))
	assert.Contains(t, out.String(), "✓ Account updated")

	req, ok := srv.LastRequest(http.MethodPatch, "/api/v1/accounts/5/")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"industry": "Printers"}, req.Body)
}

func TestDeleteCommandAsksForProducts(t *testing.T) {
	env, srv, out := setupTestCLI(t, "n\ny\n")
	login(t, env, out)
	srv.Seed("products", apitest.Record{"id": 3, "name": "Widget", "price": "9.99", "is_active": true})

	require.NoError(t, DeleteCommand(env, []string{"products", "3"}))
	assert.Contains(t, out.String(), "Delete product 3? [y/N]: ")
	assert.Contains(t, out.String(), "Cancelled")
	assert.Equal(t, 1, srv.Len("products"))

	require.NoError(t, DeleteCommand(env, []string{"products", "3"}))
	assert.Equal(t, 0, srv.Len("products"))
}

func TestDeleteCommandWithoutConfirmation(t *testing.T) {
	env, srv, out := setupTestCLI(t, "")
	login(t, env, out)
	srv.Seed("leads", apitest.Record{"id": 4, "name": "Gone", "email": "g@x.test"})
	srv.Seed("products", apitest.Record{"id": 6, "name": "Old", "price": "1.00"})

	require.NoError(t, DeleteCommand(env, []string{"leads", "4"}))
	assert.Equal(t, 0, srv.Len("leads"))

	require.NoError(t, DeleteCommand(env, []string{"products", "6", "--yes"}))
	assert.Equal(t, 0, srv.Len("products"))
	assert.NotContains(t, out.String(), "[y/N]")
}

func TestDashboardCommand(t *testing.T) {
	env, srv, out := setupTestCLI(t, "")
	login(t, env, out)
	srv.Seed("quotes", apitest.Record{"title": "Big deal", "total_price": "1200.00", "created_by_name": "Ada"})

	require.NoError(t, DashboardCommand(env, nil))
	assert.Contains(t, out.String(), "$1,200.00")
	assert.Contains(t, out.String(), "Big deal by Ada")
	assert.Contains(t, out.String(), "No recent activities found")

	srv.FailNext(http.MethodGet, "/api/v1/leads/", http.StatusInternalServerError, `{"detail":"boom"}`)
	err := DashboardCommand(env, []string{"--refresh"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error loading dashboard data")
}

func TestConfigCommand(t *testing.T) {
	env, _, out := setupTestCLI(t, "")

	require.NoError(t, ConfigCommand(env, []string{"set", "page_size", "25"}))
	assert.Contains(t, out.String(), "✓ page_size saved")

	reloaded, err := config.Load(env.Config.Path)
	require.NoError(t, err)
	assert.Equal(t, 25, reloaded.PageSize)

	out.Reset()
	require.NoError(t, ConfigCommand(env, []string{"get", "page_size"}))
	assert.Equal(t, "25\n", out.String())

	assert.Error(t, ConfigCommand(env, []string{"set", "page_size", "0"}))
	assert.Error(t, ConfigCommand(env, []string{"set", "colour", "blue"}))

	out.Reset()
	require.NoError(t, ConfigCommand(env, nil))
	assert.Contains(t, out.String(), "api_url")
}

func TestRegisterCommand(t *testing.T) {
	env, srv, out := setupTestCLI(t, "longpassword\nmismatch\n")

	err := RegisterCommand(env, []string{"--email", "new@x.test", "--first-name", "New", "--last-name", "User"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Passwords do not match")
	assert.Equal(t, 0, srv.CountRequests(http.MethodPost, "/api/v1/register/"))

	out.Reset()
	err = RegisterCommand(env, []string{
		"--email", "new@x.test", "--first-name", "New", "--last-name", "User", "--password", "longpassword",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Registration successful")
	assert.False(t, env.Session.IsLoggedIn())
}

func TestFieldsCommandListsReferenceOptions(t *testing.T) {
	env, srv, out := setupTestCLI(t, "")
	login(t, env, out)
	srv.Seed("opportunities", apitest.Record{"id": 12, "name": "Renewal"})

	require.NoError(t, FieldsCommand(env, []string{"tasks"}))
	assert.Contains(t, out.String(), "1=Ada Lovelace")
	assert.Contains(t, out.String(), "12=Renewal")

	out.Reset()
	require.NoError(t, FieldsCommand(env, []string{"products"}))
	assert.Contains(t, out.String(), "DEFAULT")
	assert.Regexp(t, `is_active\s+Active\s+bool\s+-\s+true`, out.String())

	err := CreateCommand(env, []string{"quotes", "--set", "title=Q1", "--set", "opportunity=99"})
	require.Error(t, err)
	assert.Equal(t, "Opportunity 99 is not one of the available options", err.Error())
	assert.Zero(t, srv.CountRequests(http.MethodPost, "/api/v1/quotes/"))
}
