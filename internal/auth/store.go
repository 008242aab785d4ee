// internal/auth/store.go
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "uaenergy"
	// FallbackDir is the directory for file-based secrets (when keyring fails)
	FallbackDir = ".uaenergy/credentials"
	// OpenAIKeyName is the entry holding the OpenAI API key
	OpenAIKeyName = "openai_api_key"
)

// ErrNotFound is returned when no secret is stored under a name
var ErrNotFound = errors.New("secret not found")

// Store keeps secrets in the OS keyring, or in 0600 files where no keyring
// is available (Codespaces, CI, headless containers).
type Store struct {
	service string
	dir     string
	useFile bool
}

// NewKeyringStore returns a Store backed by the OS keyring
func NewKeyringStore(service string) *Store {
	return &Store{service: service}
}

// NewFileStore returns a Store backed by files in dir
func NewFileStore(dir string) *Store {
	return &Store{dir: dir, useFile: true}
}

// DefaultStore probes the keyring and falls back to ~/.uaenergy/credentials
func DefaultStore() (*Store, error) {
	if !useFileBasedStorage() {
		return NewKeyringStore(KeyringService), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}
	return NewFileStore(filepath.Join(home, FallbackDir)), nil
}

func useFileBasedStorage() bool {
	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		return true
	}

	testKey := "_test_keyring_access_"
	if err := keyring.Set(KeyringService, testKey, "test"); err != nil {
		return true
	}
	_ = keyring.Delete(KeyringService, testKey)
	return false
}

// Backend names the storage in use
func (s *Store) Backend() string {
	if s.useFile {
		return "file:" + s.dir
	}
	return "keyring:" + s.service
}

// Set stores a secret under name
func (s *Store) Set(name, secret string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("secret cannot be empty")
	}

	if s.useFile {
		if err := os.MkdirAll(s.dir, 0o700); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
		if err := os.WriteFile(filepath.Join(s.dir, name), []byte(secret), 0o600); err != nil {
			return fmt.Errorf("failed to save secret file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(s.service, name, secret); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// Get loads the secret stored under name
func (s *Store) Get(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	if s.useFile {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("failed to read secret file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	secret, err := keyring.Get(s.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load from keyring: %w", err)
	}
	return secret, nil
}

// Delete removes the secret stored under name; missing secrets are not an error
func (s *Store) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	if s.useFile {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete secret file: %w", err)
		}
		return nil
	}

	err := keyring.Delete(s.service, name)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("secret name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid secret name %q", name)
	}
	return nil
}

// MaskSecret keeps the first and last four characters of a secret
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
