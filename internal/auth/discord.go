package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/rejaka/portfolio/internal/model"
)

const discordCDN = "https://cdn.discordapp.com"

func newDiscord() *Provider {
	return &Provider{
		Name: model.ProviderDiscord,
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://discord.com/oauth2/authorize",
			TokenURL:  "https://discord.com/api/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes:        []string{"identify", "email"},
		ProfileURL:    "https://discord.com/api/users/@me",
		TokenEncoding: TokenForm,
		fetchProfile:  fetchDiscordProfile,
	}
}

type discordUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	GlobalName    string `json:"global_name"`
	Email         string `json:"email"`
	Avatar        string `json:"avatar"`
	Discriminator string `json:"discriminator"`
}

func fetchDiscordProfile(ctx context.Context, client *http.Client, p *Provider) (*model.User, error) {
	var du discordUser
	if err := getProfileJSON(ctx, client, p, &du); err != nil {
		return nil, err
	}
	if du.ID == "" {
		return nil, flowError(p.Name, FailInvalidUserData, errors.New("profile has no id"))
	}
	return du.normalize(), nil
}

func (du discordUser) normalize() *model.User {
	username := du.GlobalName
	if username == "" {
		username = du.Username
	}
	return &model.User{
		UserID:   du.ID,
		Username: username,
		Email:    du.Email,
		Avatar:   discordAvatar(du.ID, du.Avatar, du.Discriminator),
		Provider: model.ProviderDiscord,
	}
}

// discordAvatar returns the uploaded avatar, or one of the five default
// avatars picked by discriminator. An unparseable discriminator picks 0.
func discordAvatar(id, hash, discriminator string) string {
	if hash != "" {
		return fmt.Sprintf("%s/avatars/%s/%s.png", discordCDN, id, hash)
	}
	n, err := strconv.Atoi(discriminator)
	if err != nil || n < 0 {
		n = 0
	}
	return fmt.Sprintf("%s/embed/avatars/%d.png", discordCDN, n%5)
}
