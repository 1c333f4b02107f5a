package strategy

import (
	"fmt"
	"net/url"

	"github.com/golden-vcr/implicit"
)

const (
	DefaultName             = "scriptr"
	DefaultAuthorizationURL = "https://www.scriptr.io/authorize"
	DefaultScopeSeparator   = " "

	// ClientSecretSentinel is used in place of a client secret: the implicit grant
	// never authenticates the client, so no real secret is ever configured
	ClientSecretSentinel = "NOT_A_SECRET"
)

// Options is the caller-supplied input to NewConfig; zero values select defaults
type Options struct {
	Name             string
	AuthorizationURL string
	CallbackURL      string
	ClientId         string
	Scopes           implicit.Scopes
	ScopeSeparator   string

	// LoadUserProfile opts in to fetching the user's profile on the callback leg;
	// profile loading is skipped by default
	LoadUserProfile bool

	// PassRequestToCallback causes the incoming *http.Request to be supplied to the
	// VerifyFunc via VerifyParams.Request
	PassRequestToCallback bool

	// TrustProxy allows X-Forwarded-Proto and X-Forwarded-Host to be used when
	// reconstructing the URL of the incoming request
	TrustProxy bool
}

// Config is the immutable configuration of a Strategy
type Config struct {
	name                  string
	authorizationURL      string
	callbackURL           string
	clientId              string
	scopes                implicit.Scopes
	scopeSeparator        string
	skipUserProfile       bool
	passRequestToCallback bool
	trustProxy            bool
}

// NewConfig validates the given options and produces a Config, filling in defaults
// for any unset values. The caller's options are not modified.
func NewConfig(opts Options) (*Config, error) {
	if opts.ClientId == "" {
		return nil, fmt.Errorf("client ID is required")
	}

	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	authorizationURL := opts.AuthorizationURL
	if authorizationURL == "" {
		authorizationURL = DefaultAuthorizationURL
	}
	u, err := url.Parse(authorizationURL)
	if err != nil {
		return nil, fmt.Errorf("invalid authorization URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("authorization URL must be absolute; got '%s'", authorizationURL)
	}

	scopeSeparator := opts.ScopeSeparator
	if scopeSeparator == "" {
		scopeSeparator = DefaultScopeSeparator
	}

	scopes := make(implicit.Scopes, len(opts.Scopes))
	copy(scopes, opts.Scopes)

	return &Config{
		name:                  name,
		authorizationURL:      authorizationURL,
		callbackURL:           opts.CallbackURL,
		clientId:              opts.ClientId,
		scopes:                scopes,
		scopeSeparator:        scopeSeparator,
		skipUserProfile:       !opts.LoadUserProfile,
		passRequestToCallback: opts.PassRequestToCallback,
		trustProxy:            opts.TrustProxy,
	}, nil
}

func (c *Config) Name() string { return c.name }
func (c *Config) AuthorizationURL() string { return c.authorizationURL }
func (c *Config) CallbackURL() string { return c.callbackURL }
func (c *Config) ClientId() string { return c.clientId }
func (c *Config) ClientSecret() string { return ClientSecretSentinel }
func (c *Config) ScopeSeparator() string { return c.scopeSeparator }
func (c *Config) SkipUserProfile() bool { return c.skipUserProfile }

// TokenURL is identical to the authorization URL: in the implicit flow, the access
// token is acquired during authorization
func (c *Config) TokenURL() string { return c.authorizationURL }

// Scopes returns a copy of the configured scope list
func (c *Config) Scopes() implicit.Scopes {
	scopes := make(implicit.Scopes, len(c.scopes))
	copy(scopes, c.scopes)
	return scopes
}
