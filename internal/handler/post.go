package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rejaka/portfolio/internal/auth"
	"github.com/rejaka/portfolio/internal/service"
)

// PostHandler serves comments and likes under /api/posts/{slug}.
type PostHandler struct {
	svc    *service.PostService
	logger *slog.Logger
}

func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{svc: svc, logger: logger}
}

// HTTP: GET /api/posts/{slug}/comments
func (h *PostHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.Comments(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

type addCommentRequest struct {
	Content string `json:"content"`
}

// HTTP: POST /api/posts/{slug}/comments
// REQUEST BODY: {"content": "Great write-up!"}
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var req addCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.svc.AddComment(r.Context(), user, chi.URLParam(r, "slug"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HTTP: DELETE /api/posts/{slug}/comments/{id}
func (h *PostHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	err := h.svc.DeleteComment(r.Context(), user, chi.URLParam(r, "slug"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLikes returns {count, liked}; liked is false for anonymous visitors.
//
// HTTP: GET /api/posts/{slug}/likes
func (h *PostHandler) HandleLikes(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	summary, err := h.svc.Likes(r.Context(), chi.URLParam(r, "slug"), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleToggleLike likes or unlikes the post and returns the new summary.
//
// HTTP: POST /api/posts/{slug}/likes
func (h *PostHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	summary, err := h.svc.ToggleLike(r.Context(), user, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
