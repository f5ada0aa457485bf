package client_test

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/pinboard/internal/client"
	"github.com/sakif/pinboard/internal/config"
	"github.com/sakif/pinboard/internal/model"
	"github.com/sakif/pinboard/internal/server"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestServer runs the full API on an in-memory database.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: 8080},
		Database: config.DatabaseConfig{Path: ":memory:"},
		Auth: config.AuthConfig{
			JWTSecret: "client-test-secret-0123456789",
			TokenTTL:  time.Hour,
		},
		RateLimit: config.RateLimitConfig{LoginPerSecond: 1000, LoginBurst: 1000},
	}
	srv, err := server.New(cfg, testLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return ts
}

func newClient(ts *httptest.Server, opts ...client.Option) *client.Client {
	opts = append([]client.Option{client.WithLogger(testLogger())}, opts...)
	return client.New(ts.URL+"/api", client.NewSession(), opts...)
}

// register returns a client logged in as a fresh user.
func register(t *testing.T, ts *httptest.Server, username string) *client.Client {
	t.Helper()
	c := newClient(ts)
	_, err := c.Register(context.Background(), client.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return c
}

func createBoard(t *testing.T, c *client.Client, name string) *model.Board {
	t.Helper()
	board, err := c.CreateBoard(context.Background(), client.BoardRequest{Name: name})
	require.NoError(t, err)
	return board
}

func createPin(t *testing.T, c *client.Client, boardID, title string) *model.Pin {
	t.Helper()
	pin, err := c.CreatePin(context.Background(), client.PinRequest{
		BoardID:  boardID,
		ImageURL: "https://img.example.com/" + title + ".jpg",
		Title:    title,
	})
	require.NoError(t, err)
	return pin
}

func boardIDs(boards []model.Board) []string {
	ids := make([]string, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.ID)
	}
	return ids
}
