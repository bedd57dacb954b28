package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/auth"
	"github.com/rejaka/portfolio/internal/model"
	"github.com/rejaka/portfolio/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeStore is an in-memory stand-in for every repository interface the
// services use. Hand-written fakes keep the tests readable: you can see
// exactly what each method does.
type fakeStore struct {
	mu sync.Mutex

	users         map[string]*model.User // keyed by provider/userId
	upserts       int
	upsertErr     error
	entries       map[string]*model.GuestbookEntry
	comments      map[string]*model.Comment
	likes         map[string]bool // keyed by slug/provider/userId
	registrations map[string]*model.Registration
	nextID        int
	clock         time.Time

	// takenCodes forces code collisions for the seminar tests.
	takenCodes map[string]bool
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*model.User),
		entries:       make(map[string]*model.GuestbookEntry),
		comments:      make(map[string]*model.Comment),
		likes:         make(map[string]bool),
		registrations: make(map[string]*model.Registration),
		takenCodes:    make(map[string]bool),
		clock:         time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// tick advances the fake clock so ordering by CreatedAt is deterministic.
func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) Upsert(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	u.CreatedAt = f.tick()
	copied := *u
	f.users[u.Provider+"/"+u.UserID] = &copied
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, provider, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[provider+"/"+userID]
	if !ok {
		return nil, apperror.NotFound("user", provider+"/"+userID)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) CreateEntry(_ context.Context, e *model.GuestbookEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.id("entry")
	e.CreatedAt = f.tick()
	copied := *e
	f.entries[e.ID] = &copied
	return nil
}

func (f *fakeStore) GetEntry(_ context.Context, id string) (*model.GuestbookEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, apperror.NotFound("guestbook entry", id)
	}
	copied := *e
	return &copied, nil
}

func (f *fakeStore) ListEntries(_ context.Context, opts repository.ListOptions) ([]model.GuestbookEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]model.GuestbookEntry, 0, len(f.entries))
	for _, e := range f.entries {
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if opts.Offset >= len(all) {
		return []model.GuestbookEntry{}, nil
	}
	all = all[opts.Offset:]
	if len(all) > opts.Limit {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (f *fakeStore) DeleteEntry(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return apperror.NotFound("guestbook entry", id)
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeStore) CreateComment(_ context.Context, c *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id("comment")
	c.CreatedAt = f.tick()
	copied := *c
	f.comments[c.ID] = &copied
	return nil
}

func (f *fakeStore) GetComment(_ context.Context, id string) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) ListComments(_ context.Context, slug string) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.PostSlug == slug {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) DeleteComment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	return nil
}

func likeKey(slug, provider, userID string) string {
	return slug + "/" + provider + "/" + userID
}

func (f *fakeStore) AddLike(_ context.Context, l *model.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := likeKey(l.PostSlug, l.Provider, l.UserID)
	if f.likes[k] {
		return apperror.Conflict("like", l.PostSlug)
	}
	f.likes[k] = true
	return nil
}

func (f *fakeStore) RemoveLike(_ context.Context, slug, provider, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := likeKey(slug, provider, userID)
	if !f.likes[k] {
		return apperror.NotFound("like", slug)
	}
	delete(f.likes, k)
	return nil
}

func (f *fakeStore) HasLiked(_ context.Context, slug, provider, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likes[likeKey(slug, provider, userID)], nil
}

func (f *fakeStore) CountLikes(_ context.Context, slug string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.likes {
		if strings.HasPrefix(k, slug+"/") {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateRegistration(_ context.Context, r *model.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takenCodes[r.Code] {
		return &apperror.AppError{Err: apperror.ErrConflict, Message: "code taken", Field: "code"}
	}
	for _, existing := range f.registrations {
		if existing.Email == r.Email {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "email taken", Field: "email"}
		}
	}
	r.ID = f.id("reg")
	r.CreatedAt = f.tick()
	copied := *r
	f.registrations[r.Code] = &copied
	f.takenCodes[r.Code] = true
	return nil
}

func (f *fakeStore) GetRegistrationByCode(_ context.Context, code string) (*model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.registrations[code]
	if !ok {
		return nil, apperror.NotFound("registration", code)
	}
	copied := *r
	return &copied, nil
}

// fakeAuthenticator returns a canned identity or error instead of calling
// a provider.
type fakeAuthenticator struct {
	user  *model.User
	err   error
	calls int
}

func (f *fakeAuthenticator) AuthURL(p *auth.Provider, state string) string {
	return p.Endpoint.AuthURL + "?state=" + state
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, _ *auth.Provider, _ string) (*model.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.user
	return &copied, nil
}

var errDatabaseDown = errors.New("database is down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func alice() *model.User {
	return &model.User{UserID: "1001", Username: "Alice", Email: "alice@example.com", Avatar: "https://a/1.png", Provider: model.ProviderGitHub}
}

func bob() *model.User {
	return &model.User{UserID: "2002", Username: "Bob", Avatar: "https://b/2.png", Provider: model.ProviderDiscord}
}
