package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/auth"
	"github.com/sakif/pinboard/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users      map[string]*model.User // keyed by internal ID
	byGHID     map[int64]*model.User
	byUsername map[string]*model.User
	nextID     int
	// set to a non-nil error to simulate a database failure
	upsertErr  error
	getByIDErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:      make(map[string]*model.User),
		byGHID:     make(map[int64]*model.User),
		byUsername: make(map[string]*model.User),
		nextID:     1,
	}
}

func (f *fakeUserRepo) store(user *model.User) {
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	copied := *user
	f.users[user.ID] = &copied
	f.byUsername[user.Username] = &copied
	if user.GitHubID != 0 {
		f.byGHID[user.GitHubID] = &copied
	}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	if _, taken := f.byUsername[user.Username]; taken {
		return apperror.Conflict("user", user.Username)
	}
	f.store(user)
	return nil
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.byGHID[user.GitHubID]; ok {
		existing.Email = user.Email
		existing.AvatarURL = user.AvatarURL
		*user = *existing
		return nil
	}
	f.store(user)
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, ok := f.byUsername[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	return u, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	stored, ok := f.users[user.ID]
	if !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored.Email = user.Email
	stored.ProfileInfo = user.ProfileInfo
	stored.UpdatedAt = time.Now()
	return nil
}

func newTestAuthService(t *testing.T, repo *fakeUserRepo) (*AuthService, *auth.TokenService) {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	// Cost 4 is the bcrypt minimum, which keeps tests fast.
	ps := auth.NewPasswordServiceForTest(4)

	return NewAuthService(repo, ts, ps, testLogger()), ts
}

// =========================================================================
// Register / Login TESTS
// =========================================================================

func TestRegister_IssuesTokenForNewUser(t *testing.T) {
	svc, tokens := newTestAuthService(t, newFakeUserRepo())

	result, err := svc.Register(context.Background(), RegisterInput{
		Username: "  alice ",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.User.Username != "alice" {
		t.Errorf("Username = %q, want %q", result.User.Username, "alice")
	}
	if result.User.PasswordHash == "correct horse" {
		t.Error("password stored in plain text")
	}

	subject, err := tokens.Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if subject != result.User.ID {
		t.Errorf("token subject = %q, want %q", subject, result.User.ID)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"blank username", RegisterInput{Username: "  ", Password: "longenough"}, "username"},
		{"long username", RegisterInput{Username: "abcdefghijklmnopqrstuvwxyz12345", Password: "longenough"}, "username"},
		{"short password", RegisterInput{Username: "bob", Password: "short"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestAuthService(t, newFakeUserRepo())

			_, err := svc.Register(context.Background(), tt.in)
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Register() error = %v, want validation error", err)
			}
			if appErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.field)
			}
		})
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeUserRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "carol", Password: "password1"}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(ctx, RegisterInput{Username: "carol", Password: "password2"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("second Register() error = %v, want validation error", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestAuthService(t, repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "dave", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 3, Login: "ghonly"}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"correct password", "dave", "s3cret-pass", false},
		{"wrong password", "dave", "nope-nope", true},
		{"unknown user", "nobody", "s3cret-pass", true},
		{"GitHub-only account", "ghonly", "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Login(ctx, tt.username, tt.password)
			if tt.wantErr {
				if !errors.Is(err, apperror.ErrUnauthorized) {
					t.Fatalf("Login() error = %v, want unauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if result.Token == "" {
				t.Error("Login() returned empty token")
			}
		})
	}
}

// =========================================================================
// LoginOrRegisterGitHub TESTS
// =========================================================================

func TestLoginOrRegisterGitHub_NewUser(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeUserRepo())

	result, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{
		ID:        42,
		Login:     "octocat",
		Email:     "octocat@github.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/42",
	})
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	if result.Token == "" {
		t.Fatal("LoginOrRegisterGitHub() returned empty Token")
	}
	if result.User.Username != "octocat" {
		t.Errorf("Username = %q, want %q", result.User.Username, "octocat")
	}
	if result.User.ID == "" {
		t.Error("User.ID should be set after upsert")
	}
}

func TestLoginOrRegisterGitHub_ExistingUserKeepsID(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeUserRepo())
	ctx := context.Background()

	first, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 99, Login: "octo", Email: "old@email.com"})
	if err != nil {
		t.Fatalf("first login error: %v", err)
	}
	second, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{ID: 99, Login: "octo", Email: "new@email.com"})
	if err != nil {
		t.Fatalf("second login error: %v", err)
	}

	if second.User.ID != first.User.ID {
		t.Errorf("ID changed from %q to %q", first.User.ID, second.User.ID)
	}
	if second.User.Email != "new@email.com" {
		t.Errorf("Email = %q, want refreshed value", second.User.Email)
	}
}

func TestLoginOrRegisterGitHub_NilGitHubUser(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeUserRepo())

	if _, err := svc.LoginOrRegisterGitHub(context.Background(), nil); err == nil {
		t.Fatal("LoginOrRegisterGitHub() should return error for nil GitHubUser")
	}
}

func TestLoginOrRegisterGitHub_RepositoryError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.upsertErr = errors.New("database is on fire")
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{ID: 1, Login: "user"})
	if err == nil {
		t.Fatal("LoginOrRegisterGitHub() should propagate repository errors")
	}
}

// =========================================================================
// GetUserByID TESTS
// =========================================================================

func TestGetUserByID_Found(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeUserRepo())

	result, err := svc.Register(context.Background(), RegisterInput{Username: "findme", Password: "password1"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	user, err := svc.GetUserByID(context.Background(), result.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if user.Username != "findme" {
		t.Errorf("Username = %q, want %q", user.Username, "findme")
	}
}

func TestGetUserByID_EmptyID(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeUserRepo())

	_, err := svc.GetUserByID(context.Background(), "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("GetUserByID() error = %v, want validation error", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeUserRepo())

	_, err := svc.GetUserByID(context.Background(), "non-existent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByID() error = %v, want not found", err)
	}
}

// =========================================================================
// UpdateProfile TESTS
// =========================================================================

func TestUpdateProfile_ChangesOnlyGivenFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc, _ := newTestAuthService(t, repo)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "a@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	info := "  Potter in Lisbon  "
	user, err := svc.UpdateProfile(ctx, result.User.ID, ProfileInput{ProfileInfo: &info})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.ProfileInfo != "Potter in Lisbon" {
		t.Errorf("ProfileInfo = %q, want trimmed text", user.ProfileInfo)
	}
	if user.Email != "a@example.com" {
		t.Errorf("Email = %q, want unchanged", user.Email)
	}

	email := "alice@example.org"
	if _, err := svc.UpdateProfile(ctx, result.User.ID, ProfileInput{Email: &email}); err != nil {
		t.Fatalf("UpdateProfile(email) error = %v", err)
	}
	stored, _ := repo.GetUserByID(ctx, result.User.ID)
	if stored.Email != email || stored.ProfileInfo != "Potter in Lisbon" {
		t.Errorf("stored = %q / %q, want both edits kept", stored.Email, stored.ProfileInfo)
	}
}

func TestUpdateProfile_Errors(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeUserRepo())
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{Username: "bob", Password: "password1"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	long := strings.Repeat("é", MaxProfileInfoLength+1)
	if _, err := svc.UpdateProfile(ctx, result.User.ID, ProfileInput{ProfileInfo: &long}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("UpdateProfile(long info) error = %v, want validation error", err)
	}
	if _, err := svc.UpdateProfile(ctx, "missing", ProfileInput{}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateProfile(missing user) error = %v, want not found", err)
	}
}
