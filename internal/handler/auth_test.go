package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pinboard/internal/handler"
	"github.com/sakif/pinboard/internal/model"
)

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func TestAuthHandler_RegisterLoginMe(t *testing.T) {
	e := newEnv(t)

	rr := serve(e.auth.HandleRegister, request(http.MethodPost, "/api/auth/register/",
		`{"username":"alice","email":"alice@example.com","password":"password123"}`, "", nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	registered := decode[authResponse](t, rr)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)
	assert.NotEmpty(t, rr.Result().Cookies(), "token cookie should be set")

	rr = serve(e.auth.HandleLogin, request(http.MethodPost, "/api/auth/login/",
		`{"username":"alice","password":"password123"}`, "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decode[authResponse](t, rr).Token)

	rr = serve(e.auth.HandleMe, request(http.MethodGet, "/api/users/me/", "", registered.User.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[model.User](t, rr)
	assert.Equal(t, registered.User.ID, me.ID)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestAuthHandler_Errors(t *testing.T) {
	e := newEnv(t)
	rr := serve(e.auth.HandleRegister, request(http.MethodPost, "/", `{"username":"bob","password":"password123"}`, "", nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
		status  int
		kind    string
	}{
		{"malformed JSON", e.auth.HandleRegister, `{"username":`, http.StatusBadRequest, "validation_error"},
		{"empty body", e.auth.HandleLogin, ``, http.StatusBadRequest, "validation_error"},
		{"short password", e.auth.HandleRegister, `{"username":"carol","password":"short"}`, http.StatusBadRequest, "validation_error"},
		{"taken username", e.auth.HandleRegister, `{"username":"bob","password":"password123"}`, http.StatusBadRequest, "validation_error"},
		{"wrong password", e.auth.HandleLogin, `{"username":"bob","password":"wrong-password"}`, http.StatusUnauthorized, "unauthorized"},
		{"unknown user", e.auth.HandleLogin, `{"username":"nobody","password":"password123"}`, http.StatusUnauthorized, "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(tt.handler, request(http.MethodPost, "/", tt.body, "", nil))
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.kind, decode[handler.ErrorResponse](t, rr).Error)
		})
	}
}

func TestAuthHandler_UpdateMe(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")

	rr := serve(e.auth.HandleUpdateMe, request(http.MethodPatch, "/api/users/me/",
		`{"profile_info":"Pottery, mostly"}`, alice.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Pottery, mostly", decode[model.User](t, rr).ProfileInfo)

	rr = serve(e.auth.HandleUpdateMe, request(http.MethodPut, "/api/users/me/",
		`{"email":"alice@example.org"}`, alice.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	me := decode[model.User](t, rr)
	assert.Equal(t, "alice@example.org", me.Email)
	assert.Equal(t, "Pottery, mostly", me.ProfileInfo)

	rr = serve(e.auth.HandleUpdateMe, request(http.MethodPut, "/api/users/me/",
		`{"email":"not-an-address"}`, alice.ID, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	errBody := decode[handler.ErrorResponse](t, rr)
	assert.Equal(t, "email", errBody.Field)
}
