// Package twitch loads user profiles from the Twitch API, for use when Twitch is the
// authorization server issuing access tokens via the implicit grant
package twitch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golden-vcr/implicit"
	"github.com/nicklaw5/helix/v2"
)

// UsersClient represents the subset of Twitch API client functionality used to
// identify the user who owns a User Access Token
type UsersClient interface {
	GetUsers(params *helix.UsersParams) (*helix.UsersResponse, error)
}

type NewUsersClientFunc func(ctx context.Context, accessToken string) (UsersClient, error)

type ProfileFetcher struct {
	newClient NewUsersClientFunc
}

func NewProfileFetcher(twitchClientId string) *ProfileFetcher {
	return &ProfileFetcher{
		newClient: func(ctx context.Context, accessToken string) (UsersClient, error) {
			c, err := helix.NewClient(&helix.Options{
				ClientID:        twitchClientId,
				UserAccessToken: accessToken,
				HTTPClient:      &contextClient{ctx: ctx, c: http.DefaultClient},
			})
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
}

// contextClient satisfies helix.HTTPClient, binding every request to a context: helix
// builds its own requests without one, so this is how cancellation of the incoming
// request reaches the Twitch API call
type contextClient struct {
	ctx context.Context
	c   *http.Client
}

func (c *contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.c.Do(req.WithContext(c.ctx))
}

// FetchProfile calls Get Users with no parameters, which (when authorized with a User
// Access Token) returns the user that the token was issued to
func (f *ProfileFetcher) FetchProfile(ctx context.Context, accessToken string) (*implicit.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := f.newClient(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Twitch API client: %w", err)
	}

	r, err := c.GetUsers(&helix.UsersParams{})
	if err != nil {
		return nil, err
	}
	if r.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got response %d from get users request: %s", r.StatusCode, r.ErrorMessage)
	}
	if len(r.Data.Users) != 1 {
		return nil, fmt.Errorf("expected exactly 1 user from get users request; got %d", len(r.Data.Users))
	}

	user := r.Data.Users[0]
	return &implicit.Profile{
		Provider:    implicit.Twitch.Name,
		Id:          user.ID,
		Username:    user.Login,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Raw: map[string]interface{}{
			"broadcaster_type":  user.BroadcasterType,
			"profile_image_url": user.ProfileImageURL,
			"type":              user.Type,
		},
	}, nil
}
