package testutil

import (
	"testing"

	"github.com/nhle/simpletasks/internal/store"
)

// NewTestStore opens an in-memory action journal with the schema applied,
// for tests of the journal observer and the history command. The store is
// closed when the test finishes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing journal: %v", err)
		}
	})
	return s
}
