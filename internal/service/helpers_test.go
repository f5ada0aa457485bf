package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/sakif/pinboard/internal/model"
	"github.com/sakif/pinboard/internal/repository/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sqlite.DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

func createBoard(t *testing.T, db *sqlite.DB, ownerID, name string) *model.Board {
	t.Helper()
	board := &model.Board{OwnerID: ownerID, Name: name}
	if err := db.CreateBoard(context.Background(), board); err != nil {
		t.Fatalf("failed to create board %q: %v", name, err)
	}
	return board
}

// fakeIndex records what the pin service sends to the search index.
type fakeIndex struct {
	mu      sync.Mutex
	indexed map[string]model.Pin
	hits    []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: make(map[string]model.Pin)}
}

func (f *fakeIndex) Index(pin model.Pin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[pin.ID] = pin
	return nil
}

func (f *fakeIndex) Delete(pinID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, pinID)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, text string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits, nil
}

func (f *fakeIndex) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.indexed[id]
	return ok
}
