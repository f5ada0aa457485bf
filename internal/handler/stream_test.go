package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pinboard/internal/handler"
	"github.com/sakif/pinboard/internal/model"
)

func TestStreamHandler_CreateAndList(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")

	t.Run("blank name is a validation error", func(t *testing.T) {
		rr := serve(e.streams.HandleCreate, request(http.MethodPost, "/api/follow-streams/", `{"stream_name":"   "}`, alice.ID, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "stream_name", body.Field)
	})

	t.Run("create returns 201", func(t *testing.T) {
		rr := serve(e.streams.HandleCreate, request(http.MethodPost, "/api/follow-streams/", `{"stream_name":"Travel"}`, alice.ID, nil))

		assert.Equal(t, http.StatusCreated, rr.Code)
		stream := decode[model.FollowStream](t, rr)
		assert.Equal(t, "Travel", stream.Name)
		assert.NotEmpty(t, stream.ID)
	})

	t.Run("list returns the caller's streams", func(t *testing.T) {
		rr := serve(e.streams.HandleList, request(http.MethodGet, "/api/follow-streams/", "", alice.ID, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode[[]model.FollowStream](t, rr), 1)
	})

	t.Run("anonymous caller is unauthorized", func(t *testing.T) {
		rr := serve(e.streams.HandleList, request(http.MethodGet, "/api/follow-streams/", "", "", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestStreamHandler_Membership(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	board := e.board(t, bob.ID, "Bikes")

	rr := serve(e.streams.HandleCreate, request(http.MethodPost, "/", `{"stream_name":"Wheels"}`, alice.ID, nil))
	require.Equal(t, http.StatusCreated, rr.Code)
	stream := decode[model.FollowStream](t, rr)
	ids := map[string]string{"id": stream.ID}

	for i := 0; i < 2; i++ {
		rr := serve(e.streams.HandleAddBoard, request(http.MethodPost, "/", `{"board_id":"`+board.ID+`"}`, alice.ID, ids))
		assert.Equal(t, http.StatusCreated, rr.Code, "add #%d", i+1)
	}

	rr = serve(e.streams.HandleListBoards, request(http.MethodGet, "/", "", alice.ID, ids))
	require.Equal(t, http.StatusOK, rr.Code)
	boards := decode[[]model.Board](t, rr)
	require.Len(t, boards, 1)
	assert.Equal(t, 1, boards[0].FollowerCount)

	// Bob cannot see Alice's stream.
	rr = serve(e.streams.HandleListBoards, request(http.MethodGet, "/", "", bob.ID, ids))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	edge := map[string]string{"id": stream.ID, "board_id": board.ID}
	rr = serve(e.streams.HandleRemoveBoard, request(http.MethodDelete, "/", "", alice.ID, edge))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = serve(e.streams.HandleRemoveBoard, request(http.MethodDelete, "/", "", alice.ID, edge))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStreamHandler_FollowUnfollow(t *testing.T) {
	e := newEnv(t)
	owner := e.user(t, "owner")
	fan := e.user(t, "fan")
	board := e.board(t, owner.ID, "B42")
	ids := map[string]string{"id": board.ID}

	rr := serve(e.streams.HandleFollowStatus, request(http.MethodGet, "/", "", fan.ID, ids))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[model.FollowStatus](t, rr).Following)

	t.Run("neither stream_id nor stream_name", func(t *testing.T) {
		rr := serve(e.streams.HandleFollow, request(http.MethodPost, "/", `{}`, fan.ID, ids))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("both stream_id and stream_name", func(t *testing.T) {
		rr := serve(e.streams.HandleFollow, request(http.MethodPost, "/", `{"stream_id":"x","stream_name":"y"}`, fan.ID, ids))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	rr = serve(e.streams.HandleFollow, request(http.MethodPost, "/", `{"stream_name":"Favourites"}`, fan.ID, ids))
	require.Equal(t, http.StatusCreated, rr.Code)
	status := decode[model.FollowStatus](t, rr)
	assert.True(t, status.Following)
	assert.Equal(t, 1, status.FollowerCount)

	rr = serve(e.streams.HandleUnfollow, request(http.MethodDelete, "/", "", fan.ID, ids))
	require.Equal(t, http.StatusOK, rr.Code)
	status = decode[model.FollowStatus](t, rr)
	assert.False(t, status.Following)
	assert.Equal(t, 0, status.FollowerCount)

	rr = serve(e.streams.HandleFollow, request(http.MethodPost, "/", `{"stream_name":"X"}`, fan.ID, map[string]string{"id": "missing"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
