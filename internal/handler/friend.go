package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/pinboard/internal/service"
	"github.com/sakif/pinboard/internal/validation"
)

// FriendHandler serves friend requests and the caller's friend list.
type FriendHandler struct {
	friends   *service.FriendService
	validator *validation.Validator
	logger    *slog.Logger
}

func NewFriendHandler(friends *service.FriendService, validator *validation.Validator, logger *slog.Logger) *FriendHandler {
	return &FriendHandler{
		friends:   friends,
		validator: validator,
		logger:    logger,
	}
}

type friendRequestRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required_without=Username"`
	Username   string `json:"username" validate:"required_without=ReceiverID"`
}

// HTTP: GET /friends/
func (h *FriendHandler) HandleListFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	friends, err := h.friends.ListFriends(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// HTTP: DELETE /friends/{id}/
func (h *FriendHandler) HandleUnfriend(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.friends.Unfriend(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListRequests returns requests the caller sent or received, newest
// first, answered ones included.
//
// HTTP: GET /friend-requests/
func (h *FriendHandler) HandleListRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	requests, err := h.friends.ListRequests(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// HTTP: POST /friend-requests/ {receiver_id | username}
func (h *FriendHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req friendRequestRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	sent, err := h.friends.Send(r.Context(), userID, service.SendInput{
		ReceiverID:       req.ReceiverID,
		ReceiverUsername: req.Username,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sent)
}

// HTTP: POST /friend-requests/{id}/accept/
func (h *FriendHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := h.friends.Accept(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HTTP: POST /friend-requests/{id}/reject/
func (h *FriendHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := h.friends.Reject(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
