package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/pinboard/internal/auth"
	"github.com/sakif/pinboard/internal/service"
	"github.com/sakif/pinboard/internal/validation"
)

const oauthStateCookie = "oauth_state"

// AuthHandler serves registration, password login, GitHub login and the
// current-user endpoint.
//
//   - HandleRegister       → POST /auth/register/
//   - HandleLogin          → POST /auth/login/
//   - HandleGitHubLogin    → GET  /auth/github/login
//   - HandleGitHubCallback → GET  /auth/github/callback
//   - HandleMe             → GET  /users/me/
//   - HandleUpdateMe       → PUT, PATCH /users/me/
//
// Successful logins answer {token, user}. The API client sends the token
// back as "Authorization: Token <token>"; browsers also get it as an
// HttpOnly cookie.
type AuthHandler struct {
	accounts  *service.AuthService
	github    *auth.GitHubProvider // nil when GitHub login is not configured
	validator *validation.Validator
	tokenTTL  time.Duration
	logger    *slog.Logger
}

func NewAuthHandler(
	accounts *service.AuthService,
	github *auth.GitHubProvider,
	validator *validation.Validator,
	tokenTTL time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		github:    github,
		validator: validator,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

type registerRequest struct {
	Username    string `json:"username" validate:"notblank,max=30"`
	Email       string `json:"email" validate:"omitempty,email"`
	Password    string `json:"password" validate:"required,min=8"`
	ProfileInfo string `json:"profile_info" validate:"max=1000"`
}

// updateProfileRequest is a partial edit; absent fields keep their value.
type updateProfileRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	ProfileInfo *string `json:"profile_info" validate:"omitempty,max=1000"`
}

type loginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		ProfileInfo: req.ProfileInfo,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result)
}

// HandleGitHubLogin redirects to GitHub's consent page.
//
// A random state value is stored in a short-lived cookie and checked by the
// callback, which proves the callback answers a login this server started.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback checks the state, exchanges the code for the GitHub
// profile and logs that account in.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: invalid state")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid OAuth state",
			Field:   "state",
		})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", errParam))
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "GitHub authorization was denied",
		})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "missing OAuth code",
			Field:   "code",
		})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	result, err := h.accounts.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("github callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result)
}

// HandleMe returns the authenticated user's profile.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateMe edits the authenticated user's email and profile text.
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), userID, service.ProfileInput{
		Email:       req.Email,
		ProfileInfo: req.ProfileInfo,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleLogout clears the token cookie. Tokens held by API clients stay
// valid until they expire.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
