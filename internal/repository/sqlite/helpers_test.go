package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/pinboard/internal/model"
)

// newTestDB opens a fresh in-memory database with the full schema applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestBoard(t *testing.T, db *DB, ownerID, name string) *model.Board {
	t.Helper()
	board := &model.Board{OwnerID: ownerID, Name: name}
	if err := db.CreateBoard(context.Background(), board); err != nil {
		t.Fatalf("failed to create test board: %v", err)
	}
	return board
}

func createTestPin(t *testing.T, db *DB, boardID, title string) *model.Pin {
	t.Helper()
	pin := &model.Pin{BoardID: boardID, Title: title, ImageURL: "https://img.example.com/" + title}
	if err := db.CreatePin(context.Background(), pin); err != nil {
		t.Fatalf("failed to create test pin: %v", err)
	}
	return pin
}

func createTestStream(t *testing.T, db *DB, ownerID, name string) *model.FollowStream {
	t.Helper()
	stream := &model.FollowStream{OwnerID: ownerID, Name: name}
	if err := db.CreateStream(context.Background(), stream); err != nil {
		t.Fatalf("failed to create test stream: %v", err)
	}
	return stream
}
