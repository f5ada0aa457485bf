package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/model"
)

// AuthResult is the body of a successful register or login.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterRequest carries a new account.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password"`
	ProfileInfo string `json:"profile_info,omitempty"`
}

// Register creates an account and stores the returned login in the session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, apperror.ValidationFailed("username", "Please enter a username")
	}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register/", req, &result); err != nil {
		return nil, err
	}
	return c.remember(result)
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperror.ValidationFailed("username", "Please enter a username")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "Please enter a password")
	}

	var result AuthResult
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login/", body, &result); err != nil {
		return nil, err
	}
	return c.remember(result)
}

func (c *Client) remember(result AuthResult) (*model.User, error) {
	if result.Token == "" {
		return nil, fmt.Errorf("client: login response carried no token")
	}
	if err := c.session.Set(result.Token, result.User); err != nil {
		return nil, err
	}
	return result.User, nil
}

// Logout forgets the local session. The server call only clears the
// browser cookie, so its failure is not reported.
func (c *Client) Logout(ctx context.Context) error {
	_ = c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil)
	return c.session.Clear()
}

// Me fetches the logged-in user's profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate is a partial profile edit; nil fields are left unchanged.
type ProfileUpdate struct {
	Email       *string `json:"email,omitempty"`
	ProfileInfo *string `json:"profile_info,omitempty"`
}

// UpdateProfile edits the logged-in user's profile and refreshes the user
// kept in the session.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPatch, "/users/me/", update, &user); err != nil {
		return nil, err
	}
	if token := c.session.Token(); token != "" {
		if err := c.session.Set(token, &user); err != nil {
			return nil, err
		}
	}
	return &user, nil
}
