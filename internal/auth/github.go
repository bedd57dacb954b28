package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/oauth2/github"

	"github.com/rejaka/portfolio/internal/model"
)

func newGitHub() *Provider {
	return &Provider{
		Name:          model.ProviderGitHub,
		Endpoint:      github.Endpoint,
		Scopes:        []string{"read:user", "user:email"},
		ProfileURL:    "https://api.github.com/user",
		TokenEncoding: TokenJSON,
		// GitHub callbacks may carry ?redirect= from older login links.
		AllowRedirectOverride: true,
		fetchProfile:          fetchGitHubProfile,
	}
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func fetchGitHubProfile(ctx context.Context, client *http.Client, p *Provider) (*model.User, error) {
	var gu githubUser
	if err := getProfileJSON(ctx, client, p, &gu); err != nil {
		return nil, err
	}
	if gu.ID == 0 {
		return nil, flowError(p.Name, FailInvalidUserData, errors.New("profile has no id"))
	}

	username := gu.Name
	if username == "" {
		username = gu.Login
	}
	return &model.User{
		UserID:   strconv.FormatInt(gu.ID, 10),
		Username: username,
		Email:    gu.Email,
		Avatar:   gu.AvatarURL,
		Provider: model.ProviderGitHub,
	}, nil
}
