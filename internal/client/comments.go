package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
)

// Comments lists a pin's comments, oldest first.
func (c *Client) Comments(ctx context.Context, pinID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	if err := c.do(ctx, http.MethodGet, path("pins", pinID, "comments"), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment comments on a pin. The server refuses callers who are neither
// the board owner nor, on boards that allow it, the owner's friend.
func (c *Client) AddComment(ctx context.Context, pinID, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "Please enter a comment")
	}
	var comment model.Comment
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, path("pins", pinID, "comments"), body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	return c.do(ctx, http.MethodDelete, path("comments", commentID), nil, nil)
}
