package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
)

func TestComments_CreateListDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	board := createTestBoard(t, db, alice.ID, "b")
	pin := createTestPin(t, db, board.ID, "sunset")

	first := &model.Comment{PinID: pin.ID, AuthorID: alice.ID, Content: "lovely"}
	if err := db.CreateComment(ctx, first); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if first.ID == "" || first.AuthorUsername != "alice" {
		t.Errorf("created comment = %+v, want an id and author alice", first)
	}
	second := &model.Comment{PinID: pin.ID, AuthorID: bob.ID, Content: "agreed"}
	if err := db.CreateComment(ctx, second); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	comments, err := db.ListComments(ctx, pin.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 2 || comments[0].ID != first.ID || comments[1].AuthorUsername != "bob" {
		t.Errorf("ListComments() = %+v, want alice's then bob's", comments)
	}

	if err := db.DeleteComment(ctx, first.ID); err != nil {
		t.Fatalf("DeleteComment() error = %v", err)
	}
	if _, err := db.GetComment(ctx, first.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetComment() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.DeleteComment(ctx, first.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteComment() twice error = %v, want ErrNotFound", err)
	}
}

func TestComments_GoWithTheirPin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	board := createTestBoard(t, db, alice.ID, "b")
	pin := createTestPin(t, db, board.ID, "sunset")

	c := &model.Comment{PinID: pin.ID, AuthorID: alice.ID, Content: "mine"}
	if err := db.CreateComment(ctx, c); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if err := db.DeletePin(ctx, pin.ID); err != nil {
		t.Fatalf("DeletePin() error = %v", err)
	}

	comments, err := db.ListComments(ctx, pin.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if comments == nil || len(comments) != 0 {
		t.Errorf("ListComments() = %#v, want an empty non-nil slice", comments)
	}
}
