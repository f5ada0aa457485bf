package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
	"github.com/sakif/pinboard/internal/repository"
)

const MaxStreamNameLength = 255

// StreamService manages a user's follow-streams and is the only way boards
// become followed or unfollowed.
//
// Follow state is never stored on its own. A board is followed by a user
// exactly when one of that user's streams contains it, and the follower
// count comes from the same membership table, so the two cannot drift.
type StreamService struct {
	streams repository.StreamRepository
	boards  repository.BoardRepository
	logger  *slog.Logger
}

func NewStreamService(streams repository.StreamRepository, boards repository.BoardRepository, logger *slog.Logger) *StreamService {
	return &StreamService{
		streams: streams,
		boards:  boards,
		logger:  logger,
	}
}

// cleanStreamName trims name and enforces the length limits.
func cleanStreamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.ValidationFailed("stream_name", "stream name must not be blank")
	}
	if utf8.RuneCountInString(name) > MaxStreamNameLength {
		return "", apperror.ValidationFailed("stream_name",
			fmt.Sprintf("stream name must be %d characters or less", MaxStreamNameLength))
	}
	return name, nil
}

func (s *StreamService) List(ctx context.Context, ownerID string) ([]model.FollowStream, error) {
	streams, err := s.streams.ListStreams(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list streams",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing streams: %w", err)
	}
	return streams, nil
}

func (s *StreamService) Create(ctx context.Context, ownerID, name string) (*model.FollowStream, error) {
	name, err := cleanStreamName(name)
	if err != nil {
		return nil, err
	}

	stream := &model.FollowStream{OwnerID: ownerID, Name: name}
	if err := s.streams.CreateStream(ctx, stream); err != nil {
		return nil, fmt.Errorf("creating stream: %w", err)
	}

	s.logger.Info("stream created",
		slog.String("id", stream.ID),
		slog.String("owner", ownerID),
	)
	return stream, nil
}

func (s *StreamService) Get(ctx context.Context, ownerID, streamID string) (*model.FollowStream, error) {
	return s.streams.GetStream(ctx, ownerID, streamID)
}

func (s *StreamService) Rename(ctx context.Context, ownerID, streamID, name string) (*model.FollowStream, error) {
	name, err := cleanStreamName(name)
	if err != nil {
		return nil, err
	}
	stream, err := s.streams.RenameStream(ctx, ownerID, streamID, name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("stream renamed", slog.String("id", streamID))
	return stream, nil
}

// Delete removes the stream and its memberships. Boards that were only in
// this stream stop being followed by the owner.
func (s *StreamService) Delete(ctx context.Context, ownerID, streamID string) error {
	if err := s.streams.DeleteStream(ctx, ownerID, streamID); err != nil {
		return err
	}
	s.logger.Info("stream deleted", slog.String("id", streamID))
	return nil
}

func (s *StreamService) ListBoards(ctx context.Context, ownerID, streamID string) ([]model.Board, error) {
	return s.streams.ListStreamBoards(ctx, ownerID, streamID)
}

// AddBoard puts boardID into the stream. Adding a member twice succeeds.
func (s *StreamService) AddBoard(ctx context.Context, ownerID, streamID, boardID string) error {
	if strings.TrimSpace(boardID) == "" {
		return apperror.ValidationFailed("board_id", "board ID is required")
	}
	if err := s.streams.AddBoardToStream(ctx, ownerID, streamID, boardID); err != nil {
		return err
	}

	s.logger.Info("board added to stream",
		slog.String("stream", streamID),
		slog.String("board", boardID),
	)
	return nil
}

func (s *StreamService) RemoveBoard(ctx context.Context, ownerID, streamID, boardID string) error {
	if err := s.streams.RemoveBoardFromStream(ctx, ownerID, streamID, boardID); err != nil {
		return err
	}

	s.logger.Info("board removed from stream",
		slog.String("stream", streamID),
		slog.String("board", boardID),
	)
	return nil
}

// ListPins returns the pins of every board in the stream, newest first.
// A limit of zero or less returns all of them.
func (s *StreamService) ListPins(ctx context.Context, ownerID, streamID string, limit, offset int) ([]model.Pin, error) {
	opts := repository.ListOptions{Limit: limit, Offset: offset}
	if limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	return s.streams.ListStreamPins(ctx, ownerID, streamID, opts)
}

// FollowRequest names the stream a board is followed into: an existing
// one by StreamID, or a new one by StreamName.
type FollowRequest struct {
	StreamID   string
	StreamName string
}

// Follow adds boardID to a stream of userID and returns the new status.
// Creating the stream and adding the board happen in one transaction, so a
// failed follow never leaves an empty new stream behind.
func (s *StreamService) Follow(ctx context.Context, userID, boardID string, req FollowRequest) (*model.FollowStatus, error) {
	stream := &model.FollowStream{ID: strings.TrimSpace(req.StreamID)}
	if stream.ID == "" {
		name, err := cleanStreamName(req.StreamName)
		if err != nil {
			return nil, err
		}
		stream.Name = name
	}

	if err := s.streams.FollowBoard(ctx, userID, boardID, stream); err != nil {
		return nil, err
	}

	s.logger.Info("board followed",
		slog.String("user", userID),
		slog.String("board", boardID),
		slog.String("stream", stream.ID),
	)
	return s.streams.FollowStatus(ctx, userID, boardID)
}

// Unfollow removes boardID from every stream userID owns. Unfollowing a
// board that is not followed succeeds and leaves the count unchanged.
func (s *StreamService) Unfollow(ctx context.Context, userID, boardID string) (*model.FollowStatus, error) {
	if _, err := s.boards.GetBoard(ctx, boardID); err != nil {
		return nil, err
	}

	removed, err := s.streams.UnfollowBoard(ctx, userID, boardID)
	if err != nil {
		return nil, fmt.Errorf("unfollowing board %s: %w", boardID, err)
	}

	s.logger.Info("board unfollowed",
		slog.String("user", userID),
		slog.String("board", boardID),
		slog.Int("streams", removed),
	)
	return s.streams.FollowStatus(ctx, userID, boardID)
}

func (s *StreamService) FollowStatus(ctx context.Context, userID, boardID string) (*model.FollowStatus, error) {
	return s.streams.FollowStatus(ctx, userID, boardID)
}
