package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"

	"github.com/rejaka/portfolio/internal/model"
)

const (
	googleUnknownUser   = "Unknown User"
	googleDefaultAvatar = "https://www.gravatar.com/avatar/?d=mp"
)

func newGoogle() *Provider {
	return &Provider{
		Name:     model.ProviderGoogle,
		Endpoint: google.Endpoint,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		// Base path of the People API; the client appends v1/people/me.
		ProfileURL:    "https://people.googleapis.com/",
		TokenEncoding: TokenForm,
		fetchProfile:  fetchGoogleProfile,
	}
}

func fetchGoogleProfile(ctx context.Context, client *http.Client, p *Provider) (*model.User, error) {
	svc, err := people.NewService(ctx,
		option.WithHTTPClient(client),
		option.WithEndpoint(p.ProfileURL),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: creating people client: %w", err)
	}

	person, err := svc.People.Get("people/me").
		PersonFields("names,emailAddresses,photos").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, flowError(p.Name, FailUserData, err)
		}
		return nil, fmt.Errorf("auth: fetching google person: %w", err)
	}
	if person.ResourceName == "" {
		return nil, flowError(p.Name, FailInvalidUserData, errors.New("person has no resourceName"))
	}
	return normalizeGooglePerson(person), nil
}

// normalizeGooglePerson takes the first name, email and photo, falling back
// to placeholders when Google returns none.
func normalizeGooglePerson(person *people.Person) *model.User {
	u := &model.User{
		UserID:   strings.TrimPrefix(person.ResourceName, "people/"),
		Username: googleUnknownUser,
		Avatar:   googleDefaultAvatar,
		Provider: model.ProviderGoogle,
	}
	if len(person.Names) > 0 && person.Names[0].DisplayName != "" {
		u.Username = person.Names[0].DisplayName
	}
	if len(person.EmailAddresses) > 0 {
		u.Email = person.EmailAddresses[0].Value
	}
	if len(person.Photos) > 0 && person.Photos[0].Url != "" {
		u.Avatar = person.Photos[0].Url
	}
	return u
}
