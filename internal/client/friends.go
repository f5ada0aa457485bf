package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
)

// SendFriendRequest asks username to become the caller's friend.
func (c *Client) SendFriendRequest(ctx context.Context, username string) (*model.FriendRequest, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "Please enter a username")
	}
	var req model.FriendRequest
	body := map[string]string{"username": username}
	if err := c.do(ctx, http.MethodPost, "/friend-requests/", body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// FriendRequests lists requests the caller sent or received, newest first.
func (c *Client) FriendRequests(ctx context.Context) ([]model.FriendRequest, error) {
	requests := []model.FriendRequest{}
	if err := c.do(ctx, http.MethodGet, "/friend-requests/", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) AcceptFriendRequest(ctx context.Context, requestID string) (*model.FriendRequest, error) {
	return c.answerFriendRequest(ctx, requestID, "accept")
}

func (c *Client) RejectFriendRequest(ctx context.Context, requestID string) (*model.FriendRequest, error) {
	return c.answerFriendRequest(ctx, requestID, "reject")
}

func (c *Client) answerFriendRequest(ctx context.Context, requestID, answer string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	if err := c.do(ctx, http.MethodPost, path("friend-requests", requestID, answer), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) Friends(ctx context.Context) ([]model.User, error) {
	friends := []model.User{}
	if err := c.do(ctx, http.MethodGet, "/friends/", nil, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (c *Client) Unfriend(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, path("friends", userID), nil, nil)
}
