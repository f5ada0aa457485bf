package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/pinboard/internal/service"
	"github.com/sakif/pinboard/internal/validation"
)

// StreamHandler serves follow-streams, their memberships and the follow,
// unfollow and follow-status actions on boards.
//
// Every route acts on the caller's own streams. Someone else's stream is
// answered with 404, the same as a stream that does not exist.
type StreamHandler struct {
	streams   *service.StreamService
	validator *validation.Validator
	logger    *slog.Logger
}

func NewStreamHandler(streams *service.StreamService, validator *validation.Validator, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		streams:   streams,
		validator: validator,
		logger:    logger,
	}
}

type streamRequest struct {
	Name string `json:"stream_name" validate:"notblank,max=255"`
}

type streamBoardRequest struct {
	BoardID string `json:"board_id" validate:"notblank"`
}

// followRequest picks an existing stream by id or names a new one.
type followRequest struct {
	StreamID   string `json:"stream_id" validate:"required_without=StreamName,excluded_with=StreamName"`
	StreamName string `json:"stream_name" validate:"max=255"`
}

// HTTP: GET /follow-streams/
func (h *StreamHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	streams, err := h.streams.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streams)
}

// HTTP: POST /follow-streams/ {stream_name}
func (h *StreamHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req streamRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	stream, err := h.streams.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stream)
}

// HTTP: GET /follow-streams/{id}/
func (h *StreamHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	stream, err := h.streams.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stream)
}

// HTTP: PUT /follow-streams/{id}/ {stream_name}
func (h *StreamHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req streamRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	stream, err := h.streams.Rename(r.Context(), userID, r.PathValue("id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stream)
}

// HTTP: DELETE /follow-streams/{id}/
func (h *StreamHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.streams.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: GET /follow-streams/{id}/boards/
func (h *StreamHandler) HandleListBoards(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	boards, err := h.streams.ListBoards(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

// HandleAddBoard answers 201 whether or not the board was already a member.
//
// HTTP: POST /follow-streams/{id}/boards/ {board_id}
func (h *StreamHandler) HandleAddBoard(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req streamBoardRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.streams.AddBoard(r.Context(), userID, r.PathValue("id"), req.BoardID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"stream_id": r.PathValue("id"),
		"board_id":  req.BoardID,
	})
}

// HTTP: DELETE /follow-streams/{id}/boards/{board_id}/
func (h *StreamHandler) HandleRemoveBoard(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.streams.RemoveBoard(r.Context(), userID, r.PathValue("id"), r.PathValue("board_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListPins returns every pin of every member board, newest first.
//
// HTTP: GET /follow-streams/{id}/pins/
func (h *StreamHandler) HandleListPins(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit, offset := pageParams(r)
	pins, err := h.streams.ListPins(r.Context(), userID, r.PathValue("id"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pins)
}

// HandleFollow adds the board to an existing stream or to a new one created
// in the same transaction.
//
// HTTP: POST /boards/{id}/follow/ {stream_id} | {stream_name}
func (h *StreamHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req followRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	status, err := h.streams.Follow(r.Context(), userID, r.PathValue("id"), service.FollowRequest{
		StreamID:   req.StreamID,
		StreamName: req.StreamName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, status)
}

// HandleUnfollow removes the board from all of the caller's streams.
//
// HTTP: DELETE /boards/{id}/unfollow/
func (h *StreamHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	status, err := h.streams.Unfollow(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HTTP: GET /boards/{id}/follow_status/
func (h *StreamHandler) HandleFollowStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	status, err := h.streams.FollowStatus(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
