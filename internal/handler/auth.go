package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/auth"
	"github.com/rejaka/portfolio/internal/model"
	"github.com/rejaka/portfolio/internal/service"
)

// AuthHandler serves the OAuth login for every provider in the table, plus
// the session and logout endpoints.
//
// ROUTES:
//   - GET  /api/auth/{provider}   → start or finish a login (HandleAuth)
//   - GET  /api/auth/session      → the signed-in user, or 401
//   - GET  /api/auth/logout       → clear the cookie, redirect
//   - POST /api/auth/logout       → clear the cookie, JSON
type AuthHandler struct {
	providers *auth.Providers
	logins    *service.AuthService
	sessions  *auth.SessionService
	redirects *auth.RedirectSanitizer
	logger    *slog.Logger
}

func NewAuthHandler(
	providers *auth.Providers,
	logins *service.AuthService,
	sessions *auth.SessionService,
	redirects *auth.RedirectSanitizer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		providers: providers,
		logins:    logins,
		sessions:  sessions,
		redirects: redirects,
		logger:    logger,
	}
}

// HandleAuth is both ends of the login.
//
// HTTP: GET /api/auth/{provider}?code=&state=&redirect=
//
// Without code, the browser is sent to the provider's authorize page; the
// caller's ?redirect= travels there and back as state. With code, this is
// the provider's callback:
//
//  1. exchange the code and fetch the profile (service.AuthService.Login)
//  2. pick the destination: state, or ?redirect= for providers that allow
//     overriding it, or /?modal=guestbook
//  3. run it through the redirect sanitizer
//  4. set the guestbook_user cookie
//  5. redirect
//
// Any failure lands on /?error=<code> (token_exchange_failed,
// no_access_token, user_data_failed, invalid_user_data, auth_failed).
func (h *AuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	p, ok := h.providers.Get(name)
	if !ok {
		writeError(w, apperror.NotFound("auth provider", name))
		return
	}

	q := r.URL.Query()

	// The provider sends the visitor back with ?error= and no code when
	// they decline the consent screen.
	if q.Get("code") == "" && q.Get("error") != "" {
		h.logger.Info("auth callback: provider returned an error",
			slog.String("provider", p.Name),
			slog.String("error", q.Get("error")),
		)
		h.fail(w, r, auth.FailAuth)
		return
	}

	if q.Get("code") == "" {
		http.Redirect(w, r, h.logins.AuthURL(p, q.Get("redirect")), http.StatusTemporaryRedirect)
		return
	}

	h.callback(w, r, p)
}

func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request, p *auth.Provider) {
	// A panic anywhere in the flow still ends on the error page rather than
	// a bare 500 from the Recoverer middleware.
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("auth callback: panic",
				slog.String("provider", p.Name),
				slog.String("panic", fmt.Sprint(rec)),
			)
			h.fail(w, r, auth.FailAuth)
		}
	}()

	q := r.URL.Query()

	user, err := h.logins.Login(r.Context(), p, q.Get("code"))
	if err != nil {
		code := auth.CodeOf(err)
		h.logger.Error("auth callback: login failed",
			slog.String("provider", p.Name),
			slog.String("code", string(code)),
			slog.String("error", err.Error()),
		)
		h.fail(w, r, code)
		return
	}

	target := q.Get("state")
	if p.AllowRedirectOverride && q.Get("redirect") != "" {
		target = q.Get("redirect")
	}
	target = h.redirects.Sanitize(target, r.Host)

	if err := h.sessions.SetCookie(w, user); err != nil {
		h.logger.Error("auth callback: issuing session failed",
			slog.String("provider", p.Name),
			slog.String("error", err.Error()),
		)
		h.fail(w, r, auth.FailAuth)
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, code auth.FailureCode) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(string(code)), http.StatusSeeOther)
}

// SessionResponse is the body of GET /api/auth/session.
type SessionResponse struct {
	User *model.User `json:"user"`
}

// HandleSession reports who is signed in.
//
// HTTP: GET /api/auth/session
//
// The UI calls this after login, logout and navigation to refresh its view of
// the session. A hand-edited cookie reads as signed out.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.FromRequest(r)
	if err != nil {
		writeError(w, apperror.Unauthorized("no active session"))
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{User: user})
}

// HandleLogout clears the guestbook_user cookie.
//
// HTTP: POST /api/auth/logout → {"message":"logged out"}
// HTTP: GET  /api/auth/logout?redirect=/blog → 303 to the sanitized target (default /)
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)

	if r.Method == http.MethodPost {
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
		return
	}

	target := h.redirects.SanitizeOr(r.URL.Query().Get("redirect"), r.Host, "/")
	http.Redirect(w, r, target, http.StatusSeeOther)
}
