package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sakif/pinboard/internal/apperror"
)

func TestBoardCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoardService(db, db, testLogger())
	owner := createUser(t, db, "owner")

	tests := []struct {
		name  string
		input BoardInput
		field string
	}{
		{"blank name", BoardInput{Name: "  "}, "board_name"},
		{"long name", BoardInput{Name: strings.Repeat("n", MaxBoardNameLength+1)}, "board_name"},
		{"long descriptor", BoardInput{Name: "ok", Descriptor: strings.Repeat("d", MaxDescriptorLength+1)}, "descriptor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), owner.ID, tt.input)
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || appErr.Field != tt.field {
				t.Fatalf("Create() error = %v, want validation error on %q", err, tt.field)
			}
		})
	}
}

func TestBoardUpdateAndDelete_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoardService(db, db, testLogger())
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	stranger := createUser(t, db, "stranger")

	board, err := svc.Create(ctx, owner.ID, BoardInput{Name: "Recipes"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(ctx, stranger.ID, board.ID, BoardInput{Name: "Mine now"})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Update() by stranger error = %v, want forbidden", err)
	}
	if err := svc.Delete(ctx, stranger.ID, board.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Delete() by stranger error = %v, want forbidden", err)
	}

	updated, err := svc.Update(ctx, owner.ID, board.ID, BoardInput{Name: "Desserts", AllowFriendsComment: true})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Desserts" || !updated.AllowFriendsComment {
		t.Errorf("Update() = %+v", updated)
	}

	if err := svc.Delete(ctx, owner.ID, board.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, board.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want not found", err)
	}
}

func TestBoardListByOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoardService(db, db, testLogger())
	ctx := context.Background()
	owner := createUser(t, db, "owner")

	boards, err := svc.ListByOwner(ctx, owner.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if boards == nil || len(boards) != 0 {
		t.Fatalf("ListByOwner() = %v, want empty slice", boards)
	}

	for _, name := range []string{"A", "B", "C"} {
		createBoard(t, db, owner.ID, name)
	}
	boards, err = svc.ListByOwner(ctx, owner.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(boards) != 2 {
		t.Errorf("ListByOwner(limit 2) returned %d boards", len(boards))
	}
}

func TestBoardListPins_UnknownBoard(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoardService(db, db, testLogger())

	if _, err := svc.ListPins(context.Background(), "missing", 0, 0); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("ListPins() error = %v, want not found", err)
	}
}
