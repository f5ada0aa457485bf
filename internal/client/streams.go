package client

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
)

// Streams is the caller's follow-stream repository. Every confirmed change
// is written through to the Store.
type Streams struct {
	client *Client
	store  *Store
	logger *slog.Logger
}

// NewStreams wires a repository to client. A nil store gets a private one.
func NewStreams(client *Client, store *Store) *Streams {
	if store == nil {
		store = NewStore()
	}
	return &Streams{
		client: client,
		store:  store,
		logger: client.logger.With(slog.String("component", "streams")),
	}
}

func (s *Streams) Store() *Store {
	return s.store
}

func (s *Streams) ListStreams(ctx context.Context) ([]model.FollowStream, error) {
	streams := []model.FollowStream{}
	if err := s.client.do(ctx, http.MethodGet, "/follow-streams/", nil, &streams); err != nil {
		s.logger.Error("failed to list streams", slog.String("error", err.Error()))
		return nil, err
	}
	s.store.setStreams(streams)
	return streams, nil
}

// CreateStream rejects a blank name without contacting the server.
func (s *Streams) CreateStream(ctx context.Context, name string) (*model.FollowStream, error) {
	name, err := streamName(name)
	if err != nil {
		return nil, err
	}

	var stream model.FollowStream
	body := map[string]string{"stream_name": name}
	if err := s.client.do(ctx, http.MethodPost, "/follow-streams/", body, &stream); err != nil {
		s.logger.Error("failed to create stream", slog.String("error", err.Error()))
		return nil, err
	}
	s.store.putStream(stream)
	s.store.setStreamBoards(stream.ID, nil)
	return &stream, nil
}

func (s *Streams) RenameStream(ctx context.Context, streamID, name string) (*model.FollowStream, error) {
	name, err := streamName(name)
	if err != nil {
		return nil, err
	}

	var stream model.FollowStream
	body := map[string]string{"stream_name": name}
	if err := s.client.do(ctx, http.MethodPut, path("follow-streams", streamID), body, &stream); err != nil {
		s.logger.Error("failed to rename stream",
			slog.String("stream_id", streamID),
			slog.String("error", err.Error()))
		return nil, err
	}
	s.store.putStream(stream)
	return &stream, nil
}

// DeleteStream removes a stream and its memberships. Deleting it again
// fails with apperror.ErrNotFound. Boards that may have been followed only
// through this stream get their status re-read, so views of them see the
// unfollow.
func (s *Streams) DeleteStream(ctx context.Context, streamID string) error {
	if err := s.client.do(ctx, http.MethodDelete, path("follow-streams", streamID), nil, nil); err != nil {
		s.logger.Error("failed to delete stream",
			slog.String("stream_id", streamID),
			slog.String("error", err.Error()))
		return err
	}
	s.recheck(ctx, s.store.deleteStream(streamID)...)
	return nil
}

// StreamBoards returns a lazy sequence over a stream's boards. Nothing is
// sent until iteration starts; every range refetches. A failed fetch yields
// a single error.
func (s *Streams) StreamBoards(ctx context.Context, streamID string) iter.Seq2[model.Board, error] {
	return func(yield func(model.Board, error) bool) {
		boards, err := s.ListStreamBoards(ctx, streamID)
		if err != nil {
			yield(model.Board{}, err)
			return
		}
		for _, b := range boards {
			if !yield(b, nil) {
				return
			}
		}
	}
}

func (s *Streams) ListStreamBoards(ctx context.Context, streamID string) ([]model.Board, error) {
	boards := []model.Board{}
	if err := s.client.do(ctx, http.MethodGet, path("follow-streams", streamID, "boards"), nil, &boards); err != nil {
		s.logger.Error("failed to list stream boards",
			slog.String("stream_id", streamID),
			slog.String("error", err.Error()))
		return nil, err
	}
	s.store.setStreamBoards(streamID, boards)
	return boards, nil
}

// AddBoardToStream is idempotent: adding a member again succeeds.
func (s *Streams) AddBoardToStream(ctx context.Context, streamID, boardID string) error {
	if strings.TrimSpace(streamID) == "" {
		return apperror.ValidationFailed("stream_id", "Please select a stream")
	}
	body := map[string]string{"board_id": boardID}
	if err := s.client.do(ctx, http.MethodPost, path("follow-streams", streamID, "boards"), body, nil); err != nil {
		s.logger.Error("failed to add board to stream",
			slog.String("stream_id", streamID),
			slog.String("board_id", boardID),
			slog.String("error", err.Error()))
		return err
	}
	s.store.addBoard(streamID, boardID)
	return nil
}

// RemoveBoardFromStream treats a missing membership as done: the failure is
// logged and nil returned.
func (s *Streams) RemoveBoardFromStream(ctx context.Context, streamID, boardID string) error {
	err := s.client.do(ctx, http.MethodDelete, path("follow-streams", streamID, "boards", boardID), nil, nil)
	switch {
	case err == nil:
	case isNotFound(err):
		s.logger.Warn("board was not in stream",
			slog.String("stream_id", streamID),
			slog.String("board_id", boardID))
	default:
		s.logger.Error("failed to remove board from stream",
			slog.String("stream_id", streamID),
			slog.String("board_id", boardID),
			slog.String("error", err.Error()))
		return err
	}
	if s.store.removeBoard(streamID, boardID) {
		s.recheck(ctx, boardID)
	}
	return nil
}

// StreamPins asks the server for every pin of the stream's boards, newest
// first. Aggregator builds the per-board view instead.
func (s *Streams) StreamPins(ctx context.Context, streamID string) ([]model.Pin, error) {
	pins := []model.Pin{}
	if err := s.client.do(ctx, http.MethodGet, path("follow-streams", streamID, "pins"), nil, &pins); err != nil {
		return nil, err
	}
	return pins, nil
}

func (s *Streams) FollowStatus(ctx context.Context, boardID string) (*model.FollowStatus, error) {
	var status model.FollowStatus
	if err := s.client.do(ctx, http.MethodGet, path("boards", boardID, "follow_status"), nil, &status); err != nil {
		return nil, err
	}
	s.store.setStatus(status)
	return &status, nil
}

// Follow adds boardID to an existing stream or, given a name, to a new one
// in a single server transaction.
func (s *Streams) Follow(ctx context.Context, boardID, streamID, newStreamName string) (*model.FollowStatus, error) {
	body := map[string]string{}
	switch {
	case streamID != "":
		body["stream_id"] = streamID
	default:
		name, err := streamName(newStreamName)
		if err != nil {
			return nil, err
		}
		body["stream_name"] = name
	}

	var status model.FollowStatus
	if err := s.client.do(ctx, http.MethodPost, path("boards", boardID, "follow"), body, &status); err != nil {
		s.logger.Error("failed to follow board",
			slog.String("board_id", boardID),
			slog.String("error", err.Error()))
		return nil, err
	}
	if streamID == "" {
		// The new stream's id is not in the response.
		if _, err := s.ListStreams(ctx); err != nil {
			s.logger.Warn("failed to refresh streams after follow", slog.String("error", err.Error()))
		}
	} else {
		s.store.addBoard(streamID, boardID)
	}
	s.store.setStatus(status)
	return &status, nil
}

// recheck re-reads the follow status of boards that may have lost their
// last stream. The store publishes BoardUnfollowed for those that did.
// Failures are logged; the triggering change already succeeded.
func (s *Streams) recheck(ctx context.Context, boardIDs ...string) {
	for _, boardID := range boardIDs {
		var status model.FollowStatus
		if err := s.client.do(ctx, http.MethodGet, path("boards", boardID, "follow_status"), nil, &status); err != nil {
			s.logger.Warn("failed to re-read follow status",
				slog.String("board_id", boardID),
				slog.String("error", err.Error()))
			continue
		}
		if status.Following {
			s.store.setStatus(status)
		} else {
			s.store.unfollow(status)
		}
	}
}

// UnfollowBoard removes boardID from every stream of the caller.
func (s *Streams) UnfollowBoard(ctx context.Context, boardID string) (*model.FollowStatus, error) {
	var status model.FollowStatus
	if err := s.client.do(ctx, http.MethodDelete, path("boards", boardID, "unfollow"), nil, &status); err != nil {
		s.logger.Error("failed to unfollow board",
			slog.String("board_id", boardID),
			slog.String("error", err.Error()))
		return nil, err
	}
	s.store.unfollow(status)
	return &status, nil
}

func streamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.ValidationFailed("stream_name", "Please enter a stream name")
	}
	return name, nil
}
