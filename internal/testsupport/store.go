package testsupport

import (
	"context"
	"testing"

	"chataudio/internal/messages"
)

// MustOpenStore opens a messages.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, path string) *messages.Store {
	t.Helper()

	store, err := messages.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("messages.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
