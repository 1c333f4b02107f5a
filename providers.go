package implicit

import (
	"fmt"
	"strings"
)

// Provider describes an authorization server that supports the OAuth 2.0 Implicit
// Grant flow
type Provider struct {
	Name             string
	AuthorizationURL string
	DefaultScopes    Scopes

	// ProfileURL is the endpoint from which a user's profile may be fetched with the
	// access token; empty if the provider exposes no such endpoint
	ProfileURL string
}

// Scriptr issues access tokens directly from its authorize endpoint. Valid scopes are
// 'list', 'manage', and 'execute'.
var Scriptr = Provider{
	Name:             "scriptr",
	AuthorizationURL: "https://www.scriptr.io/authorize",
	DefaultScopes:    Scopes{"list", "manage", "execute"},
}

// Twitch supports the implicit grant for client-side apps, as described in
// https://dev.twitch.tv/docs/authentication/getting-tokens-oauth/#implicit-grant-flow
var Twitch = Provider{
	Name:             "twitch",
	AuthorizationURL: "https://id.twitch.tv/oauth2/authorize",
	DefaultScopes:    Scopes{"user:read:email"},
	ProfileURL:       "https://api.twitch.tv/helix/users",
}

// Providers lists all known providers, keyed by name
var Providers = map[string]Provider{
	Scriptr.Name: Scriptr,
	Twitch.Name:  Twitch,
}

// LookupProvider returns the provider with the given name, case-insensitively
func LookupProvider(name string) (Provider, error) {
	provider, ok := Providers[strings.ToLower(name)]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider '%s'", name)
	}
	return provider, nil
}
