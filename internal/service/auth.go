package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/auth"
	"github.com/sakif/pinboard/internal/model"
	"github.com/sakif/pinboard/internal/repository"
)

const (
	MinPasswordLength    = 8
	MaxUsernameLength    = 30
	MaxProfileInfoLength = 1000
)

// AuthService registers and logs users in and issues their access tokens.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                               ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued token.
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// RegisterInput carries the fields of a new password account.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	ProfileInfo string
}

// Register creates a password account and logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
		}
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		ProfileInfo:  strings.TrimSpace(in.ProfileInfo),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("username", "username is already taken")
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return s.issue(user)
}

// Login checks a username/password pair. Unknown users and wrong passwords
// produce the same error so usernames cannot be discovered.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	invalid := apperror.Unauthorized("invalid username or password")

	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}
	if user.PasswordHash == "" {
		// GitHub-only account.
		return nil, invalid
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("failed login", slog.String("username", user.Username))
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.issue(user)
}

// LoginOrRegisterGitHub upserts the GitHub user and issues a token.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Username:  ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

// ProfileInput holds a profile edit. Nil fields are left unchanged.
type ProfileInput struct {
	Email       *string
	ProfileInfo *string
}

// UpdateProfile edits the caller's email and profile text.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.ProfileInfo != nil {
		info := strings.TrimSpace(*in.ProfileInfo)
		if utf8.RuneCountInString(info) > MaxProfileInfoLength {
			return nil, apperror.ValidationFailed("profile_info",
				fmt.Sprintf("profile info must be %d characters or less", MaxProfileInfoLength))
		}
		user.ProfileInfo = info
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: updating profile of %s: %w", userID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}
