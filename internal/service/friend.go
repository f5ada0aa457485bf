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

// FriendService sends and answers friend requests. Friendship is symmetric
// and only comes into being when the receiver accepts.
type FriendService struct {
	friends repository.FriendRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

func NewFriendService(friends repository.FriendRepository, users repository.UserRepository, logger *slog.Logger) *FriendService {
	return &FriendService{
		friends: friends,
		users:   users,
		logger:  logger,
	}
}

// SendInput names the receiver by id or, when the id is empty, by username.
type SendInput struct {
	ReceiverID       string
	ReceiverUsername string
}

func (s *FriendService) Send(ctx context.Context, senderID string, in SendInput) (*model.FriendRequest, error) {
	receiver, err := s.resolveReceiver(ctx, in)
	if err != nil {
		return nil, err
	}
	if receiver.ID == senderID {
		return nil, apperror.ValidationFailed("receiver_id", "you cannot send a friend request to yourself")
	}

	req := &model.FriendRequest{SenderID: senderID, ReceiverID: receiver.ID}
	if err := s.friends.CreateFriendRequest(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("friend request sent",
		slog.String("id", req.ID),
		slog.String("sender", senderID),
		slog.String("receiver", receiver.ID),
	)
	return req, nil
}

func (s *FriendService) resolveReceiver(ctx context.Context, in SendInput) (*model.User, error) {
	if id := strings.TrimSpace(in.ReceiverID); id != "" {
		return s.users.GetUserByID(ctx, id)
	}
	if name := strings.TrimSpace(in.ReceiverUsername); name != "" {
		return s.users.GetUserByUsername(ctx, name)
	}
	return nil, apperror.ValidationFailed("receiver_id", "receiver ID or username is required")
}

func (s *FriendService) Accept(ctx context.Context, userID, requestID string) (*model.FriendRequest, error) {
	return s.respond(ctx, userID, requestID, model.FriendRequestAccepted)
}

func (s *FriendService) Reject(ctx context.Context, userID, requestID string) (*model.FriendRequest, error) {
	return s.respond(ctx, userID, requestID, model.FriendRequestRejected)
}

// respond answers a request on behalf of its receiver. Requests the caller
// takes no part in are reported as missing.
func (s *FriendService) respond(ctx context.Context, userID, requestID string, status model.FriendRequestStatus) (*model.FriendRequest, error) {
	req, err := s.friends.GetFriendRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch userID {
	case req.ReceiverID:
	case req.SenderID:
		return nil, apperror.Forbidden("only the receiver can answer a friend request")
	default:
		return nil, apperror.NotFound("friend request", requestID)
	}

	answered, err := s.friends.RespondFriendRequest(ctx, requestID, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("friend request answered",
		slog.String("id", requestID),
		slog.String("status", string(status)),
	)
	return answered, nil
}

// ListRequests returns the requests the user sent or received, newest first.
func (s *FriendService) ListRequests(ctx context.Context, userID string) ([]model.FriendRequest, error) {
	requests, err := s.friends.ListFriendRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing friend requests: %w", err)
	}
	return requests, nil
}

func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]model.User, error) {
	friends, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	return friends, nil
}

func (s *FriendService) Unfriend(ctx context.Context, userID, friendID string) error {
	if err := s.friends.DeleteFriendship(ctx, userID, friendID); err != nil {
		return err
	}
	s.logger.Info("friendship removed",
		slog.String("user", userID),
		slog.String("friend", friendID),
	)
	return nil
}
