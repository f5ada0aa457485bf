package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/pinboard/internal/service"
	"github.com/sakif/pinboard/internal/validation"
)

// PinHandler serves pins, repins, likes and pin search.
type PinHandler struct {
	pins      *service.PinService
	validator *validation.Validator
	logger    *slog.Logger
}

func NewPinHandler(pins *service.PinService, validator *validation.Validator, logger *slog.Logger) *PinHandler {
	return &PinHandler{
		pins:      pins,
		validator: validator,
		logger:    logger,
	}
}

type pinRequest struct {
	BoardID     string   `json:"board_id" validate:"notblank"`
	ImageURL    string   `json:"image_url" validate:"required,url"`
	Title       string   `json:"title" validate:"max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
}

type repinRequest struct {
	BoardID     string   `json:"board_id" validate:"notblank"`
	Title       string   `json:"title" validate:"max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// HTTP: POST /pins/
func (h *PinHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req pinRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	pin, err := h.pins.Create(r.Context(), userID, service.PinInput{
		BoardID:     req.BoardID,
		ImageURL:    req.ImageURL,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pin)
}

// HTTP: GET /pins/{id}/
func (h *PinHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	pin, err := h.pins.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pin)
}

// HTTP: DELETE /pins/{id}/
func (h *PinHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.pins.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRepin copies the pin into one of the caller's boards. Omitted text
// fields are taken from the original.
//
// HTTP: POST /pins/{id}/repin/ {board_id, title?, description?, tags?}
func (h *PinHandler) HandleRepin(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req repinRequest
	if err := decodeJSON(w, r, h.validator, &req); err != nil {
		writeError(w, err)
		return
	}

	pin, err := h.pins.Repin(r.Context(), userID, service.RepinInput{
		OriginPinID: r.PathValue("id"),
		BoardID:     req.BoardID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pin)
}

// HTTP: POST /pins/{id}/like/
func (h *PinHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	pin, err := h.pins.Like(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pin)
}

// HTTP: DELETE /pins/{id}/like/
func (h *PinHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	pin, err := h.pins.Unlike(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pin)
}

// HandleSearch runs a full-text search over pin titles, descriptions and
// tags. An empty query returns an empty list.
//
// HTTP: GET /search/pins/?q=&limit=
func (h *PinHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	pins, err := h.pins.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.Error("pin search failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pins)
}
