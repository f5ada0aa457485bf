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

const MaxCommentLength = 2000

// CommentService manages comments on pins.
//
// The owner of a pin's board may always comment on it. Anyone else needs
// the board to allow friends' comments and must be the owner's friend.
type CommentService struct {
	comments repository.CommentRepository
	pins     repository.PinRepository
	boards   repository.BoardRepository
	friends  repository.FriendRepository
	logger   *slog.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	pins repository.PinRepository,
	boards repository.BoardRepository,
	friends repository.FriendRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		pins:     pins,
		boards:   boards,
		friends:  friends,
		logger:   logger,
	}
}

func (s *CommentService) Add(ctx context.Context, callerID, pinID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment must not be blank")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content", fmt.Sprintf("comment must be at most %d characters", MaxCommentLength))
	}

	board, err := s.pinBoard(ctx, pinID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCanComment(ctx, callerID, board); err != nil {
		return nil, err
	}

	comment := &model.Comment{PinID: pinID, AuthorID: callerID, Content: content}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("adding comment: %w", err)
	}
	s.logger.Info("comment added",
		slog.String("id", comment.ID),
		slog.String("pin", pinID),
		slog.String("author", callerID),
	)
	return comment, nil
}

func (s *CommentService) checkCanComment(ctx context.Context, callerID string, board *model.Board) error {
	if board.OwnerID == callerID {
		return nil
	}
	if !board.AllowFriendsComment {
		return apperror.Forbidden("only the board owner can comment on this pin")
	}
	friends, err := s.friends.AreFriends(ctx, callerID, board.OwnerID)
	if err != nil {
		return fmt.Errorf("checking friendship: %w", err)
	}
	if !friends {
		return apperror.Forbidden("only friends of the board owner can comment on this pin")
	}
	return nil
}

// List returns a pin's comments, oldest first.
func (s *CommentService) List(ctx context.Context, pinID string) ([]model.Comment, error) {
	if _, err := s.pins.GetPin(ctx, pinID); err != nil {
		return nil, err
	}
	return s.comments.ListComments(ctx, pinID)
}

// Delete removes a comment. Its author and the owner of the pin's board may
// delete it.
func (s *CommentService) Delete(ctx context.Context, callerID, commentID string) error {
	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != callerID {
		board, err := s.pinBoard(ctx, comment.PinID)
		if err != nil {
			return err
		}
		if board.OwnerID != callerID {
			return apperror.Forbidden("only the author or the board owner can delete this comment")
		}
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.logger.Info("comment deleted", slog.String("id", commentID))
	return nil
}

func (s *CommentService) pinBoard(ctx context.Context, pinID string) (*model.Board, error) {
	if pinID = strings.TrimSpace(pinID); pinID == "" {
		return nil, apperror.ValidationFailed("pin_id", "pin ID is required")
	}
	pin, err := s.pins.GetPin(ctx, pinID)
	if err != nil {
		return nil, err
	}
	return s.boards.GetBoard(ctx, pin.BoardID)
}
