package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/rejaka/portfolio/internal/model"
)

// Client runs the server side of the authorization code flow:
//
//  1. AuthURL sends the browser to the provider with our client ID, redirect
//     URI and scopes.
//  2. The provider redirects back with a one-time code.
//  3. Exchange trades the code for an access token (server to server, using
//     the client secret).
//  4. The provider's profile endpoint is called with the token and the
//     answer is normalized into a model.User.
//
// Nothing is retried: every failure ends the login attempt.
type Client struct {
	httpClient *http.Client
}

// NewClient uses httpClient for every outbound call. Nil means a client with
// a 10s timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient}
}

// AuthURL returns the provider's authorization URL. state carries the
// caller's post-login destination; when it is empty the parameter is left out.
func (c *Client) AuthURL(p *Provider, state string) string {
	authURL := p.oauthConfig().AuthCodeURL(state)
	if state != "" {
		return authURL
	}

	// state must be absent, not empty, when no redirect was requested.
	u, err := url.Parse(authURL)
	if err != nil {
		return authURL
	}
	q := u.Query()
	q.Del("state")
	u.RawQuery = q.Encode()
	return u.String()
}

// Authenticate exchanges code and loads the provider profile.
func (c *Client) Authenticate(ctx context.Context, p *Provider, code string) (*model.User, error) {
	token, err := c.Exchange(ctx, p, code)
	if err != nil {
		return nil, err
	}

	// oauth2.NewClient wraps the transport of the client found under
	// oauth2.HTTPClient so every request carries "Authorization: Bearer <token>".
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	bearer := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	return p.fetchProfile(ctx, bearer, p)
}

// tokenResponse is the subset of RFC 6749 §5.1 we read.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

// Exchange posts the authorization code to the provider's token endpoint.
//
// A non-2xx answer is FailTokenExchange. A 2xx answer without an access token
// (GitHub answers 200 with {"error": "bad_verification_code"}) is
// FailNoAccessToken. Transport and decoding errors carry no code.
func (c *Client) Exchange(ctx context.Context, p *Provider, code string) (*oauth2.Token, error) {
	params := map[string]string{
		"client_id":     p.ClientID,
		"client_secret": p.ClientSecret,
		"grant_type":    "authorization_code",
		"code":          code,
		"redirect_uri":  p.RedirectURL,
	}

	var (
		body        io.Reader
		contentType string
	)
	switch p.TokenEncoding {
	case TokenJSON:
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("auth: encoding %s token request: %w", p.Name, err)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	default:
		form := url.Values{}
		for k, v := range params {
			form.Set(k, v)
		}
		body, contentType = strings.NewReader(form.Encode()), "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint.TokenURL, body)
	if err != nil {
		return nil, fmt.Errorf("auth: building %s token request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling %s token endpoint: %w", p.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, flowError(p.Name, FailTokenExchange, fmt.Errorf("token endpoint returned status %d", resp.StatusCode))
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("auth: decoding %s token response: %w", p.Name, err)
	}
	if payload.AccessToken == "" {
		return nil, flowError(p.Name, FailNoAccessToken, errors.New("token response has no access_token"))
	}

	token := &oauth2.Token{
		AccessToken:  payload.AccessToken,
		TokenType:    payload.TokenType,
		RefreshToken: payload.RefreshToken,
	}
	if payload.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	return token, nil
}

// getProfileJSON GETs p.ProfileURL and decodes the body into out.
// Any non-200 status is FailUserData.
func getProfileJSON(ctx context.Context, client *http.Client, p *Provider, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ProfileURL, nil)
	if err != nil {
		return fmt.Errorf("auth: building %s profile request: %w", p.Name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: calling %s profile endpoint: %w", p.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return flowError(p.Name, FailUserData, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("auth: decoding %s profile: %w", p.Name, err)
	}
	return nil
}
