// ABOUTME: Persistence for login credentials between runs
// ABOUTME: JSON file under the XDG data dir, or the OS keyring
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/zalando/go-keyring"
)

// ErrNoCredentials means nothing is stored.
var ErrNoCredentials = errors.New("no stored credentials")

// Credentials is a stored login.
type Credentials struct {
	Username string `json:"username"`
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	// BaseURL is the backend the tokens were issued by.
	BaseURL string `json:"base_url"`
}

// TokenStore loads and saves credentials.
type TokenStore interface {
	Load() (*Credentials, error)
	Save(c *Credentials) error
	Clear() error
}

// DefaultTokenPath returns the XDG-compliant credentials file path.
func DefaultTokenPath() string {
	return filepath.Join(xdg.DataHome, "salescrm", "credentials.json")
}

// FileStore keeps credentials in a 0600 JSON file.
type FileStore struct {
	Path string
}

func (s *FileStore) Load() (*Credentials, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open credentials file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var c Credentials
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}
	return &c, nil
}

func (s *FileStore) Save(c *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}

// KeyringService is the keyring service name credentials are stored under.
const KeyringService = "salescrm"

// KeyringStore keeps credentials in the OS keyring as one JSON secret.
type KeyringStore struct {
	Service string
	User    string
}

func (s *KeyringStore) service() string {
	if s.Service == "" {
		return KeyringService
	}
	return s.Service
}

func (s *KeyringStore) user() string {
	if s.User == "" {
		return "default"
	}
	return s.User
}

func (s *KeyringStore) Load() (*Credentials, error) {
	secret, err := keyring.Get(s.service(), s.user())
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal([]byte(secret), &c); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}
	return &c, nil
}

func (s *KeyringStore) Save(c *Credentials) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := keyring.Set(s.service(), s.user(), string(data)); err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

func (s *KeyringStore) Clear() error {
	if err := keyring.Delete(s.service(), s.user()); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to clear keyring: %w", err)
	}
	return nil
}

// NewStore builds the store named by kind: "file" (default) or "keyring".
func NewStore(kind, path string) (TokenStore, error) {
	switch kind {
	case "", "file":
		if path == "" {
			path = DefaultTokenPath()
		}
		return &FileStore{Path: path}, nil
	case "keyring":
		return &KeyringStore{}, nil
	}
	return nil, fmt.Errorf("unknown token store %q (want file or keyring)", kind)
}
