package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rejaka/portfolio/internal/auth"
	"github.com/rejaka/portfolio/internal/config"
	"github.com/rejaka/portfolio/internal/model"
	sqliteRepo "github.com/rejaka/portfolio/internal/repository/sqlite"
	"github.com/rejaka/portfolio/internal/server"
)

const testSecret = "server-test-secret-0123456789"

// newTestServer runs the full router on an in-memory SQLite store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{
		Port:           8080,
		AppEnv:         config.EnvDevelopment,
		PublicURLLocal: "http://localhost:3000",
		SessionSecret:  testSecret,
		Store:          config.StoreSQLite,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv, err := server.NewWithStore(cfg, store, logger, server.Options{})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// sessionFor signs a cookie the way a completed login would.
func sessionFor(t *testing.T, u *model.User) *http.Cookie {
	t.Helper()
	key, err := auth.DeriveKey(testSecret)
	require.NoError(t, err)
	sessions, err := auth.NewSessionService(key, false)
	require.NoError(t, err)
	token, err := sessions.Issue(u)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

var (
	ada = &model.User{UserID: "1", Username: "Ada", Avatar: "https://a/1.png", Provider: "github"}
	bob = &model.User{UserID: "2", Username: "Bob", Avatar: "https://b/2.png", Provider: "discord"}
)

func do(t *testing.T, ts *httptest.Server, method, path string, body any, cookie *http.Cookie) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, ts, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestAuthRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := do(t, ts, http.MethodGet, "/api/auth/github", nil, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "github.com/login/oauth/authorize")
	assert.Contains(t, resp.Header.Get("Location"), "redirect_uri=http%3A%2F%2Flocalhost%3A3000%2Fapi%2Fauth%2Fgithub")

	resp, _ = do(t, ts, http.MethodGet, "/api/auth/session", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, ts, http.MethodGet, "/api/auth/session", nil, sessionFor(t, ada))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"username":"Ada"`)
}

func TestGuestbookAPI(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := do(t, ts, http.MethodPost, "/api/guestbook", map[string]string{"message": "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, ts, http.MethodPost, "/api/guestbook", map[string]string{"message": "Hello from Jakarta"}, sessionFor(t, ada))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var entry model.GuestbookEntry
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, "Ada", entry.Author.Username)

	resp, body = do(t, ts, http.MethodPost, "/api/guestbook", map[string]string{"message": ""}, sessionFor(t, ada))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"field":"message"`)

	resp, _ = do(t, ts, http.MethodPost, "/api/guestbook", map[string]string{"msg": "typo"}, sessionFor(t, ada))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, ts, http.MethodGet, "/api/guestbook?limit=10", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []model.GuestbookEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	assert.Len(t, entries, 1)

	resp, _ = do(t, ts, http.MethodGet, "/api/guestbook?limit=ten", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodDelete, "/api/guestbook/"+entry.ID, nil, sessionFor(t, bob))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodDelete, "/api/guestbook/"+entry.ID, nil, sessionFor(t, ada))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodDelete, "/api/guestbook/"+entry.ID, nil, sessionFor(t, ada))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostAPI(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/api/posts/hello-world/comments", map[string]string{"content": "Nice post"}, sessionFor(t, bob))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var comment model.Comment
	require.NoError(t, json.Unmarshal(body, &comment))

	resp, body = do(t, ts, http.MethodGet, "/api/posts/hello-world/comments", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []model.Comment
	require.NoError(t, json.Unmarshal(body, &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "Nice post", comments[0].Content)

	resp, _ = do(t, ts, http.MethodGet, "/api/posts/Bad_Slug/comments", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, ts, http.MethodDelete, "/api/posts/hello-world/comments/"+comment.ID, nil, sessionFor(t, ada))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = do(t, ts, http.MethodDelete, "/api/posts/hello-world/comments/"+comment.ID, nil, sessionFor(t, bob))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// likes
	resp, body = do(t, ts, http.MethodPost, "/api/posts/hello-world/likes", nil, sessionFor(t, ada))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":1,"liked":true}`, string(body))

	_, body = do(t, ts, http.MethodGet, "/api/posts/hello-world/likes", nil, nil)
	assert.JSONEq(t, `{"count":1,"liked":false}`, string(body))

	_, body = do(t, ts, http.MethodGet, "/api/posts/hello-world/likes", nil, sessionFor(t, ada))
	assert.JSONEq(t, `{"count":1,"liked":true}`, string(body))

	_, body = do(t, ts, http.MethodPost, "/api/posts/hello-world/likes", nil, sessionFor(t, ada))
	assert.JSONEq(t, `{"count":0,"liked":false}`, string(body))

	resp, _ = do(t, ts, http.MethodPost, "/api/posts/hello-world/likes", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSeminarAPI(t *testing.T) {
	ts := newTestServer(t)

	req := map[string]string{"name": "Grace Hopper", "email": "grace@example.com", "institution": "US Navy"}
	resp, body := do(t, ts, http.MethodPost, "/api/seminar/registrations", req, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var reg model.Registration
	require.NoError(t, json.Unmarshal(body, &reg))
	assert.Regexp(t, `^SEM-[A-HJ-NP-Z2-9]{6}$`, reg.Code)

	resp, _ = do(t, ts, http.MethodPost, "/api/seminar/registrations", req, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, ts, http.MethodGet, "/api/seminar/registrations/"+reg.Code, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"email":"grace@example.com"`)

	resp, _ = do(t, ts, http.MethodGet, "/api/seminar/registrations/SEM-ZZZZZZ", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/guestbook", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
