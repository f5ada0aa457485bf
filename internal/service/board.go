// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept primitives and small input structs, never HTTP types, and
// return apperror values. The handler layer alone knows about status codes.
//
// Services depend on the repository interfaces, not on *sqlite.DB; tests
// pass in-memory SQLite databases or hand-written fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
	"github.com/sakif/pinboard/internal/repository"
)

const (
	MaxBoardNameLength  = 100
	MaxDescriptorLength = 1000
	DefaultListLimit    = 20
	MaxListLimit        = 100
)

// BoardService handles boards and their pin listings.
type BoardService struct {
	boards repository.BoardRepository
	pins   repository.PinRepository
	logger *slog.Logger
}

func NewBoardService(boards repository.BoardRepository, pins repository.PinRepository, logger *slog.Logger) *BoardService {
	return &BoardService{
		boards: boards,
		pins:   pins,
		logger: logger,
	}
}

// BoardInput carries the editable fields of a board.
type BoardInput struct {
	Name                string
	Descriptor          string
	AllowFriendsComment bool
}

func (in BoardInput) validate() (BoardInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Descriptor = strings.TrimSpace(in.Descriptor)

	if in.Name == "" {
		return in, apperror.ValidationFailed("board_name", "board name is required")
	}
	if len(in.Name) > MaxBoardNameLength {
		return in, apperror.ValidationFailed("board_name",
			fmt.Sprintf("board name must be %d characters or less", MaxBoardNameLength))
	}
	if len(in.Descriptor) > MaxDescriptorLength {
		return in, apperror.ValidationFailed("descriptor",
			fmt.Sprintf("descriptor must be %d characters or less", MaxDescriptorLength))
	}
	return in, nil
}

func (s *BoardService) Create(ctx context.Context, ownerID string, in BoardInput) (*model.Board, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	board := &model.Board{
		OwnerID:             ownerID,
		Name:                in.Name,
		Descriptor:          in.Descriptor,
		AllowFriendsComment: in.AllowFriendsComment,
	}
	if err := s.boards.CreateBoard(ctx, board); err != nil {
		s.logger.Error("failed to create board",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating board: %w", err)
	}

	s.logger.Info("board created",
		slog.String("id", board.ID),
		slog.String("owner", ownerID),
	)
	return board, nil
}

func (s *BoardService) Get(ctx context.Context, id string) (*model.Board, error) {
	if id = strings.TrimSpace(id); id == "" {
		return nil, apperror.ValidationFailed("board_id", "board ID is required")
	}
	return s.boards.GetBoard(ctx, id)
}

// ListByOwner lists a user's boards newest first. limit is clamped to
// [1, MaxListLimit] with DefaultListLimit for zero.
func (s *BoardService) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Board, error) {
	boards, err := s.boards.ListBoardsByOwner(ctx, ownerID, clampList(limit, offset))
	if err != nil {
		s.logger.Error("failed to list boards", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	return boards, nil
}

// Update changes a board's editable fields. Only the owner may do this.
func (s *BoardService) Update(ctx context.Context, callerID, id string, in BoardInput) (*model.Board, error) {
	board, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	in, err = in.validate()
	if err != nil {
		return nil, err
	}

	board.Name = in.Name
	board.Descriptor = in.Descriptor
	board.AllowFriendsComment = in.AllowFriendsComment

	if err := s.boards.UpdateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("updating board: %w", err)
	}

	s.logger.Info("board updated", slog.String("id", id))
	return board, nil
}

// Delete removes a board with its pins and stream memberships.
func (s *BoardService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.boards.DeleteBoard(ctx, id); err != nil {
		return err
	}

	s.logger.Info("board deleted", slog.String("id", id))
	return nil
}

// ListPins returns a board's pins in the order they were pinned.
func (s *BoardService) ListPins(ctx context.Context, boardID string, limit, offset int) ([]model.Pin, error) {
	if _, err := s.Get(ctx, boardID); err != nil {
		return nil, err
	}

	opts := repository.ListOptions{Limit: limit, Offset: offset}
	if limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	pins, err := s.pins.ListPinsByBoard(ctx, boardID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing pins of board %s: %w", boardID, err)
	}
	return pins, nil
}

// owned loads a board and checks that callerID owns it.
func (s *BoardService) owned(ctx context.Context, callerID, id string) (*model.Board, error) {
	board, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if board.OwnerID != callerID {
		return nil, apperror.Forbidden("only the board owner can change this board")
	}
	return board, nil
}

func clampList(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
