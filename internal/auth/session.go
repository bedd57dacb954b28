package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rejaka/portfolio/internal/model"
)

const (
	// CookieName is read by the site's client script to show who is signed in.
	CookieName = "guestbook_user"

	SessionTTL = 7 * 24 * time.Hour

	sessionIssuer = "rejaka.me"
)

var (
	// ErrNoSession means the request carries no guestbook_user cookie.
	ErrNoSession = errors.New("auth: no session")
	// ErrInvalidSession means the cookie is present but is not a token we
	// issued, or it has expired.
	ErrInvalidSession = errors.New("auth: invalid session")
)

// SessionService issues and verifies the guestbook_user cookie.
//
// COOKIE FORMAT:
// The value is an HS256 JWT whose payload holds the five public user fields
// (userId, username, email, avatar, provider) next to the registered claims:
//
//	{"userId":"42","username":"Ada","email":"ada@example.com",
//	 "avatar":"https://...","provider":"github",
//	 "iss":"rejaka.me","sub":"github:42","iat":...,"exp":...}
//
// The cookie is not HttpOnly: the UI base64-decodes the middle segment to
// render the signed-in user. Every API route that acts on behalf of a user
// verifies the signature first, so editing the cookie in the browser grants
// nothing.
type SessionService struct {
	key    []byte
	secure bool
	now    func() time.Time
}

// NewSessionService signs with key. secure marks the cookie Secure, which
// production deployments (HTTPS only) need and local http:// runs cannot use.
func NewSessionService(key []byte, secure bool) (*SessionService, error) {
	if len(key) < 16 {
		return nil, errors.New("auth: session key must be at least 16 bytes")
	}
	return &SessionService{key: key, secure: secure, now: time.Now}, nil
}

type sessionClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

func subjectOf(provider, userID string) string {
	return provider + ":" + userID
}

// Issue signs a session token for u valid for SessionTTL.
func (s *SessionService) Issue(u *model.User) (string, error) {
	if u == nil || u.UserID == "" || u.Provider == "" {
		return "", errors.New("auth: cannot issue a session without provider and userId")
	}
	now := s.now()

	c := sessionClaims{
		UserID:   u.UserID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Provider: u.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   subjectOf(u.Provider, u.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("auth: signing session: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the user it was issued for. Any failure
// wraps ErrInvalidSession.
func (s *SessionService) Parse(token string) (*model.User, error) {
	var c sessionClaims
	_, err := jwt.ParseWithClaims(
		token,
		&c,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if c.UserID == "" || c.Provider == "" || c.Subject != subjectOf(c.Provider, c.UserID) {
		return nil, fmt.Errorf("%w: subject does not match identity", ErrInvalidSession)
	}

	return &model.User{
		UserID:   c.UserID,
		Username: c.Username,
		Email:    c.Email,
		Avatar:   c.Avatar,
		Provider: c.Provider,
	}, nil
}

// SetCookie issues a session for u and attaches it to the response.
func (s *SessionService) SetCookie(w http.ResponseWriter, u *model.User) error {
	token, err := s.Issue(u)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		Expires:  s.now().Add(SessionTTL),
		HttpOnly: false,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie overwrites the session with an already-expired empty value.
func (s *SessionService) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest reads the session cookie of r.
func (s *SessionService) FromRequest(r *http.Request) (*model.User, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return s.Parse(cookie.Value)
}

// FromCookieString reads the session out of a raw Cookie header or a
// document.cookie string ("a=1; guestbook_user=..."). Values may be
// URL-encoded.
func (s *SessionService) FromCookieString(raw string) (*model.User, error) {
	cookies, err := http.ParseCookie(raw)
	if err != nil {
		return nil, ErrNoSession
	}
	for _, c := range cookies {
		if c.Name != CookieName || c.Value == "" {
			continue
		}
		value, err := url.QueryUnescape(c.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
		}
		return s.Parse(value)
	}
	return nil, ErrNoSession
}
