package auth

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/oauth2"

	"github.com/rejaka/portfolio/internal/model"
)

// TokenEncoding is how a provider wants the authorization-code exchange body.
type TokenEncoding int

const (
	TokenForm TokenEncoding = iota // application/x-www-form-urlencoded
	TokenJSON                      // application/json
)

// profileFetcher loads the signed-in identity with a client that already
// carries the bearer token, and normalizes it into a model.User.
type profileFetcher func(ctx context.Context, client *http.Client, p *Provider) (*model.User, error)

// Provider is one row of the provider table. The login handler is generic;
// everything provider-specific lives here.
type Provider struct {
	Name          string
	Endpoint      oauth2.Endpoint
	Scopes        []string
	ProfileURL    string
	TokenEncoding TokenEncoding

	// AllowRedirectOverride lets an explicit ?redirect= on the callback win
	// over the state parameter.
	AllowRedirectOverride bool

	ClientID     string
	ClientSecret string
	RedirectURL  string

	fetchProfile profileFetcher
}

// Credentials are the OAuth client registered with a provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Providers is the provider table keyed by name.
type Providers struct {
	byName map[string]*Provider
}

// NewProviders builds the Discord, GitHub and Google rows. baseURL is the
// public origin of the site; each provider calls back to
// baseURL + "/api/auth/" + name.
func NewProviders(baseURL string, creds map[string]Credentials) *Providers {
	baseURL = strings.TrimRight(baseURL, "/")

	ps := &Providers{byName: make(map[string]*Provider)}
	for _, p := range []*Provider{newDiscord(), newGitHub(), newGoogle()} {
		c := creds[p.Name]
		p.ClientID = c.ClientID
		p.ClientSecret = c.ClientSecret
		p.RedirectURL = baseURL + "/api/auth/" + p.Name
		ps.byName[p.Name] = p
	}
	return ps
}

// Get returns the named provider, or false for names outside the table.
func (ps *Providers) Get(name string) (*Provider, bool) {
	p, ok := ps.byName[name]
	return p, ok
}

// Names lists the provider names in sorted order.
func (ps *Providers) Names() []string {
	names := make([]string, 0, len(ps.byName))
	for name := range ps.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// oauthConfig is the x/oauth2 view of the provider.
func (p *Provider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURL,
		Scopes:       p.Scopes,
		Endpoint:     p.Endpoint,
	}
}
