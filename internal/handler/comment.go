package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/pinboard/internal/service"
	"github.com/sakif/pinboard/internal/validation"
)

// CommentHandler serves comments on pins.
type CommentHandler struct {
	comments  *service.CommentService
	validator *validation.Validator
	logger    *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, validator *validation.Validator, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		comments:  comments,
		validator: validator,
		logger:    logger,
	}
}

type commentRequest struct {
	Content string `json:"content" validate:"notblank,max=2000"`
}

// HTTP: GET /pins/{id}/comments/
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleAdd comments on a pin. The board owner may always comment; others
// must be the owner's friend on a board that allows friends' comments.
//
// HTTP: POST /pins/{id}/comments/ {content}
func (h *CommentHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Add(r.Context(), userID, r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HTTP: DELETE /comments/{id}/
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.comments.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
