package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pinboard/internal/apperror"
	"github.com/sakif/pinboard/internal/client"
)

func TestClient_LoginAndMe(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts, "alice")

	c := newClient(ts)
	assert.False(t, c.Session().Authenticated())

	user, err := c.Login(context.Background(), "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, c.Session().Authenticated())

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	require.NoError(t, c.Logout(context.Background()))
	assert.False(t, c.Session().Authenticated())
	_, err = c.Me(context.Background())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestClient_WrongPasswordKeepsSession(t *testing.T) {
	ts := newTestServer(t)
	c := register(t, ts, "alice")
	token := c.Session().Token()

	var expired atomic.Bool
	other := newClient(ts, client.WithOnExpired(func() { expired.Store(true) }))
	_, err := other.Login(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.False(t, expired.Load(), "a failed login is not an expired session")

	assert.Equal(t, token, c.Session().Token())
}

func TestClient_RejectedTokenClearsSession(t *testing.T) {
	ts := newTestServer(t)

	session := client.NewSession()
	require.NoError(t, session.Set("not-a-real-token", nil))

	var expired atomic.Int32
	c := client.New(ts.URL+"/api", session,
		client.WithLogger(testLogger()),
		client.WithOnExpired(func() { expired.Add(1) }))

	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.False(t, session.Authenticated())
	assert.Equal(t, int32(1), expired.Load())
}

func TestClient_DecodesServerErrors(t *testing.T) {
	ts := newTestServer(t)
	c := register(t, ts, "alice")
	ctx := context.Background()

	_, err := c.GetBoard(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = c.CreatePin(ctx, client.PinRequest{BoardID: "x", ImageURL: "not a url"})
	require.ErrorIs(t, err, apperror.ErrValidation)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "image_url", appErr.Field)

	board := createBoard(t, c, "Mine")
	bob := register(t, ts, "bob")
	err = bob.DeleteBoard(ctx, board.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestClient_StatusFallbackWithoutBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer ts.Close()

	c := newClient(ts)
	_, err := c.GetBoard(context.Background(), "b1")
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestClient_NetworkAndCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c := newClient(ts, client.WithTimeout(50*time.Millisecond))
	_, err := c.GetBoard(context.Background(), "b1")
	assert.ErrorIs(t, err, apperror.ErrNetwork)
	assert.Equal(t, "Could not reach the server. Please try again.", client.Message(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newClient(ts).GetBoard(ctx, "b1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_BlankInputSendsNothing(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	c := newClient(ts)
	_, err := c.Login(context.Background(), "  ", "pw")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = c.CreateBoard(context.Background(), client.BoardRequest{Name: "\t"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, hits.Load())
}
