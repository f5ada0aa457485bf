package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
)

// BoardRequest carries the editable fields of a board.
type BoardRequest struct {
	Name                string `json:"board_name"`
	Descriptor          string `json:"descriptor,omitempty"`
	AllowFriendsComment bool   `json:"allow_friends_comment"`
}

func (c *Client) CreateBoard(ctx context.Context, req BoardRequest) (*model.Board, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.ValidationFailed("board_name", "Please enter a board name")
	}
	var board model.Board
	if err := c.do(ctx, http.MethodPost, "/boards/", req, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) GetBoard(ctx context.Context, boardID string) (*model.Board, error) {
	var board model.Board
	if err := c.do(ctx, http.MethodGet, path("boards", boardID), nil, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

// MyBoards lists the caller's boards, newest first.
func (c *Client) MyBoards(ctx context.Context) ([]model.Board, error) {
	boards := []model.Board{}
	if err := c.do(ctx, http.MethodGet, "/boards/", nil, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// UpdateBoard replaces a board's editable fields. Only the owner may.
func (c *Client) UpdateBoard(ctx context.Context, boardID string, req BoardRequest) (*model.Board, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.ValidationFailed("board_name", "Please enter a board name")
	}
	var board model.Board
	if err := c.do(ctx, http.MethodPut, path("boards", boardID), req, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *Client) DeleteBoard(ctx context.Context, boardID string) error {
	return c.do(ctx, http.MethodDelete, path("boards", boardID), nil, nil)
}

// BoardPins lists a board's pins in pinning order.
func (c *Client) BoardPins(ctx context.Context, boardID string) ([]model.Pin, error) {
	pins := []model.Pin{}
	if err := c.do(ctx, http.MethodGet, path("boards", boardID, "pins"), nil, &pins); err != nil {
		return nil, err
	}
	return pins, nil
}

// PinRequest carries a new pin.
type PinRequest struct {
	BoardID     string   `json:"board_id"`
	ImageURL    string   `json:"image_url"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (c *Client) CreatePin(ctx context.Context, req PinRequest) (*model.Pin, error) {
	var pin model.Pin
	if err := c.do(ctx, http.MethodPost, "/pins/", req, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

// DeletePin removes one of the caller's pins. Repins of it stay.
func (c *Client) DeletePin(ctx context.Context, pinID string) error {
	return c.do(ctx, http.MethodDelete, path("pins", pinID), nil, nil)
}

// Repin copies pinID into boardID, keeping the original's text.
func (c *Client) Repin(ctx context.Context, pinID, boardID string) (*model.Pin, error) {
	var pin model.Pin
	body := map[string]string{"board_id": boardID}
	if err := c.do(ctx, http.MethodPost, path("pins", pinID, "repin"), body, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

// Like likes the pin's original and returns the pin with its new count.
func (c *Client) Like(ctx context.Context, pinID string) (*model.Pin, error) {
	var pin model.Pin
	if err := c.do(ctx, http.MethodPost, path("pins", pinID, "like"), nil, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

func (c *Client) Unlike(ctx context.Context, pinID string) (*model.Pin, error) {
	var pin model.Pin
	if err := c.do(ctx, http.MethodDelete, path("pins", pinID, "like"), nil, &pin); err != nil {
		return nil, err
	}
	return &pin, nil
}

// SearchPins runs a full-text search. limit <= 0 uses the server default.
func (c *Client) SearchPins(ctx context.Context, query string, limit int) ([]model.Pin, error) {
	params := url.Values{"q": {query}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	pins := []model.Pin{}
	if err := c.doQuery(ctx, http.MethodGet, "/search/pins/", params, nil, &pins); err != nil {
		return nil, err
	}
	return pins, nil
}
