package credential

import (
	"testing"

	"github.com/99designs/keyring"
)

func TestKeyringStoreLifecycle(t *testing.T) {
	t.Parallel()

	s := NewStore(keyring.NewArrayKeyring(nil), "token")

	token, err := s.Get()
	if err != nil {
		t.Fatalf("Get on empty store: %v", err)
	}
	if token != "" {
		t.Fatalf("expected no token, got %q", token)
	}

	if err := s.Set("abc123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	token, err = s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if token != "abc123" {
		t.Errorf("expected abc123, got %q", token)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	token, _ = s.Get()
	if token != "" {
		t.Errorf("expected token cleared, got %q", token)
	}
}

func TestKeyringStoreClearWhenEmpty(t *testing.T) {
	t.Parallel()

	s := NewStore(keyring.NewArrayKeyring(nil), "token")
	if err := s.Clear(); err != nil {
		t.Errorf("expected clearing an empty store to succeed, got %v", err)
	}
}

func TestKeyringStoreSetEmptyClears(t *testing.T) {
	t.Parallel()

	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: "token", Data: []byte("old")}})
	s := NewStore(ring, "token")

	if err := s.Set(""); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if _, err := ring.Get("token"); err != keyring.ErrKeyNotFound {
		t.Errorf("expected key removed, got %v", err)
	}
}

func TestKeyringStoreUsesConfiguredKey(t *testing.T) {
	t.Parallel()

	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: "other", Data: []byte("x")}})
	s := NewStore(ring, "token")

	token, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if token != "" {
		t.Errorf("expected only the configured key to be read, got %q", token)
	}
}
