package auth

import (
	"context"
	"net/http"

	"github.com/rejaka/portfolio/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can build a key of this type, so no other package can
// read or shadow the session user stored under it.
type contextKey string

const userKey contextKey = "sessionUser"

// RequireSession enforces a valid guestbook_user cookie on the wrapped routes.
//
// The cookie is verified with sessions, and the decoded user is stored in
// the request context. A missing, tampered or expired cookie ends the
// request with 401:
//
//	req → RequireSession → handler
//	         │
//	         └─ no valid session → 401 {"error":"unauthorized",...}
func RequireSession(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.FromRequest(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"sign in to continue"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalSession attaches the session user when the cookie is valid and
// lets anonymous requests through untouched. Public reads such as like
// counts use it to tell whether the caller has liked a post.
func OptionalSession(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := sessions.FromRequest(r); err == nil {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the session user, or (nil, false) for anonymous
// requests.
//
//	user, ok := auth.UserFromContext(r.Context())
//	if !ok {
//	    // anonymous
//	}
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}
