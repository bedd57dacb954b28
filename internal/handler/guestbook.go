package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rejaka/portfolio/internal/auth"
	"github.com/rejaka/portfolio/internal/service"
)

// GuestbookHandler serves /api/guestbook. Writes sit behind
// auth.RequireSession, so the user in the context is always verified.
type GuestbookHandler struct {
	svc    *service.GuestbookService
	logger *slog.Logger
}

func NewGuestbookHandler(svc *service.GuestbookService, logger *slog.Logger) *GuestbookHandler {
	return &GuestbookHandler{svc: svc, logger: logger}
}

// HandleList returns entries newest first.
//
// HTTP: GET /api/guestbook?limit=20&offset=0
func (h *GuestbookHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", service.DefaultListLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type signGuestbookRequest struct {
	Message string `json:"message"`
}

// HandleSign adds an entry for the signed-in user.
//
// HTTP: POST /api/guestbook
// REQUEST BODY: {"message": "Hello from Jakarta!"}
func (h *GuestbookHandler) HandleSign(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req signGuestbookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.svc.Sign(r.Context(), user, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleDelete removes one of the signed-in user's own entries.
//
// HTTP: DELETE /api/guestbook/{id}
func (h *GuestbookHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
