package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rejaka/portfolio/internal/service"
)

// SeminarHandler serves seat registrations. No session is needed: attendees
// are identified by email and their ticket code.
type SeminarHandler struct {
	svc    *service.SeminarService
	logger *slog.Logger
}

func NewSeminarHandler(svc *service.SeminarService, logger *slog.Logger) *SeminarHandler {
	return &SeminarHandler{svc: svc, logger: logger}
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Institution string `json:"institution"`
}

// HandleRegister reserves a seat.
//
// HTTP: POST /api/seminar/registrations
// REQUEST BODY: {"name": "...", "email": "...", "institution": "..."}
// RESPONSE: 201 with the registration, including its SEM-XXXXXX code.
func (h *SeminarHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	reg, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Institution)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// HTTP: GET /api/seminar/registrations/{code}
func (h *SeminarHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	reg, err := h.svc.Lookup(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}
