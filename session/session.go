// ABOUTME: Process-wide authentication context shared by the TUI, CLI and MCP server
// ABOUTME: Loads stored tokens once at startup and exposes login, logout, registration and onboarding
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/models"
	"golang.org/x/oauth2"
)

// ErrNotLoggedIn is returned by operations that need a session.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is created once per process and passed to every consumer. The
// current user is fetched at Init and Login, never ad hoc.
type Session struct {
	base   *api.Client
	store  TokenStore
	logger *log.Logger

	mu     sync.RWMutex
	creds  *Credentials
	user   *models.User
	client *api.Client
}

// New creates a logged-out session. base is the unauthenticated client.
func New(base *api.Client, store TokenStore, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{base: base, store: store, logger: logger}
}

// Init restores a stored login. Missing, foreign or rejected credentials
// leave the session logged out without an error.
func (s *Session) Init(ctx context.Context) error {
	creds, err := s.store.Load()
	if errors.Is(err, ErrNoCredentials) {
		return nil
	}
	if err != nil {
		return err
	}
	if creds.BaseURL != "" && creds.BaseURL != s.base.BaseURL() {
		s.logger.Info("stored credentials belong to another backend", "stored", creds.BaseURL)
		return nil
	}

	s.adopt(creds)
	user, err := s.Client().Me(ctx)
	if errors.Is(err, api.ErrUnauthorized) {
		s.logger.Info("stored session expired")
		s.reset()
		return s.store.Clear()
	}
	if err != nil {
		s.reset()
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

func (s *Session) adopt(creds *Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	ts := oauth2.ReuseTokenSource(oauthToken(creds.Access), &refresher{s: s})
	s.client = s.base.WithTokenSource(ts)
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	s.user = nil
	s.client = nil
}

// IsLoggedIn reports whether a user is authenticated.
func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns the authenticated user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Client returns the authenticated client, or the anonymous one when logged out.
func (s *Session) Client() *api.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return s.base
	}
	return s.client
}

// Login exchanges credentials for tokens, stores them and loads the user.
func (s *Session) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	pair, err := s.base.ObtainToken(ctx, username, password)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{
		Username: username,
		Access:   pair.Access,
		Refresh:  pair.Refresh,
		BaseURL:  s.base.BaseURL(),
	}
	s.adopt(creds)

	user, err := s.Client().Me(ctx)
	if err != nil {
		s.reset()
		return nil, err
	}

	if err := s.store.Save(creds); err != nil {
		s.reset()
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.logger.Info("logged in", "user", username)
	return user, nil
}

// Logout forgets the user and the stored tokens.
func (s *Session) Logout() error {
	s.reset()
	return s.store.Clear()
}

// Reload re-fetches the current user, e.g. after joining an organization.
func (s *Session) Reload(ctx context.Context) error {
	if !s.IsLoggedIn() {
		return ErrNotLoggedIn
	}
	user, err := s.Client().Me(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// CreateOrganization creates an organization for a user without one and
// reloads the user so the new membership is visible.
func (s *Session) CreateOrganization(ctx context.Context, name, description string) (*models.Organization, error) {
	user, ok := s.User()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	if user.HasOrganization() {
		return nil, fmt.Errorf("you already belong to an organization")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("organization name is required")
	}

	org, err := s.Client().CreateOrganization(ctx, name, strings.TrimSpace(description))
	if err != nil {
		return nil, err
	}
	if err := s.Reload(ctx); err != nil {
		return org, err
	}
	return org, nil
}
