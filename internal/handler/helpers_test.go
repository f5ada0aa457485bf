package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/pinboard/internal/auth"
	"github.com/sakif/pinboard/internal/handler"
	"github.com/sakif/pinboard/internal/model"
	"github.com/sakif/pinboard/internal/repository/sqlite"
	"github.com/sakif/pinboard/internal/search"
	"github.com/sakif/pinboard/internal/service"
	"github.com/sakif/pinboard/internal/validation"
)

// env bundles handlers built on one in-memory database.
type env struct {
	db       *sqlite.DB
	auth     *handler.AuthHandler
	boards   *handler.BoardHandler
	pins     *handler.PinHandler
	streams  *handler.StreamHandler
	friends  *handler.FriendHandler
	comments *handler.CommentHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	index, err := search.NewPinIndex(logger)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	v := validation.New()
	return &env{
		db: db,
		auth: handler.NewAuthHandler(
			service.NewAuthService(db, tokens, auth.NewPasswordServiceForTest(4), logger),
			nil, v, time.Hour, logger,
		),
		boards:   handler.NewBoardHandler(service.NewBoardService(db, db, logger), v, logger),
		pins:     handler.NewPinHandler(service.NewPinService(db, db, index, logger), v, logger),
		streams:  handler.NewStreamHandler(service.NewStreamService(db, db, logger), v, logger),
		friends:  handler.NewFriendHandler(service.NewFriendService(db, db, logger), v, logger),
		comments: handler.NewCommentHandler(service.NewCommentService(db, db, db, db, logger), v, logger),
	}
}

func (e *env) user(t *testing.T, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username}
	require.NoError(t, e.db.CreateUser(context.Background(), u))
	return u
}

func (e *env) board(t *testing.T, ownerID, name string) *model.Board {
	t.Helper()
	b := &model.Board{OwnerID: ownerID, Name: name}
	require.NoError(t, e.db.CreateBoard(context.Background(), b))
	return b
}

// request builds a request as userID (empty for anonymous) with the given
// path values already set, the way chi would.
func request(method, target, body, userID string, pathValues map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}
