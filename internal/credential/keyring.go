package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/simpletasks/internal/model"
)

// Store holds the single session token. An empty token means no session.
type Store interface {
	// Get returns the stored token, or "" when there is none.
	Get() (string, error)
	// Set replaces the stored token.
	Set(token string) error
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear() error
}

// KeyringStore keeps the session token in the system keyring.
type KeyringStore struct {
	open func() (keyring.Keyring, error)
	key  string
}

// NewKeyringStore returns a Store backed by the platform keyring described
// by cfg. The keyring is opened on each call so that another process
// (e.g. `simpletasks logout`) sees the same entry.
func NewKeyringStore(cfg model.SessionConfig) *KeyringStore {
	return &KeyringStore{
		open: func() (keyring.Keyring, error) { return openKeyring(cfg) },
		key:  cfg.Key,
	}
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring, key string) *KeyringStore {
	return &KeyringStore{
		open: func() (keyring.Keyring, error) { return ring, nil },
		key:  key,
	}
}

// openKeyring returns a configured keyring instance.
func openKeyring(cfg model.SessionConfig) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: cfg.ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  cfg.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(cfg.ServiceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves the session token from the keyring.
func (s *KeyringStore) Get() (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(s.key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", s.key, err)
	}

	return string(item.Data), nil
}

// Set stores the session token in the keyring.
func (s *KeyringStore) Set(token string) error {
	if token == "" {
		return s.Clear()
	}

	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   s.key,
		Data:  []byte(token),
		Label: "simpletasks session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", s.key, err)
	}

	return nil
}

// Clear removes the session token from the keyring.
func (s *KeyringStore) Clear() error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Remove(s.key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", s.key, err)
	}

	return nil
}
