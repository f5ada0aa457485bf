package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/pinboard/internal/service"
	"github.com/sakif/pinboard/internal/validation"
)

// BoardHandler serves board CRUD and board pin listings.
type BoardHandler struct {
	boards    *service.BoardService
	validator *validation.Validator
	logger    *slog.Logger
}

func NewBoardHandler(boards *service.BoardService, validator *validation.Validator, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{
		boards:    boards,
		validator: validator,
		logger:    logger,
	}
}

type boardRequest struct {
	Name                string `json:"board_name" validate:"notblank,max=100"`
	Descriptor          string `json:"descriptor" validate:"max=1000"`
	AllowFriendsComment bool   `json:"allow_friends_comment"`
}

func (req boardRequest) input() service.BoardInput {
	return service.BoardInput{
		Name:                req.Name,
		Descriptor:          req.Descriptor,
		AllowFriendsComment: req.AllowFriendsComment,
	}
}

// HandleListMine returns the caller's boards.
//
// HTTP: GET /boards/?limit=&offset=
func (h *BoardHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.list(w, r, userID)
}

// HandleListByUser returns another user's boards. Boards are public.
//
// HTTP: GET /users/{id}/boards/
func (h *BoardHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.PathValue("id"))
}

func (h *BoardHandler) list(w http.ResponseWriter, r *http.Request, ownerID string) {
	limit, offset := pageParams(r)
	boards, err := h.boards.ListByOwner(r.Context(), ownerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

// HTTP: POST /boards/
func (h *BoardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req boardRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	board, err := h.boards.Create(r.Context(), userID, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, board)
}

// HTTP: GET /boards/{id}/
func (h *BoardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	board, err := h.boards.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HTTP: PUT /boards/{id}/
func (h *BoardHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req boardRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	board, err := h.boards.Update(r.Context(), userID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HTTP: DELETE /boards/{id}/
func (h *BoardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.boards.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListPins returns the pins of one board in pinning order.
//
// HTTP: GET /boards/{id}/pins/
func (h *BoardHandler) HandleListPins(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	pins, err := h.boards.ListPins(r.Context(), r.PathValue("id"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pins)
}
