package strategy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"

	"github.com/golden-vcr/implicit"
)

// Query parameters that carry credentials or errors on the callback leg; all others
// are forwarded to the VerifyFunc as VerifyParams.ExtraParams
const (
	ParamError        = "error"
	ParamAccessToken  = "access_token"
	ParamRefreshToken = "refresh_token"
)

// AuthorizationURLBuilder produces the URL of the authorization server's authorize
// endpoint, carrying the given parameters
type AuthorizationURLBuilder interface {
	BuildAuthorizationURL(params url.Values) string
}

// ProfileFetcher loads a user's profile from the provider, using the access token that
// was issued to us on the callback leg
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, accessToken string) (*implicit.Profile, error)
}

// VerifyParams carries everything we know about the user once the authorization
// server has redirected back to us with an access token
type VerifyParams struct {
	AccessToken string

	// RefreshToken is always empty: the implicit grant never issues refresh tokens
	RefreshToken string

	// ExtraParams holds all callback query parameters other than error, access_token,
	// and refresh_token (e.g. token_type, expires_in, scope, state)
	ExtraParams url.Values

	// Profile is never nil; it's empty if profile loading is skipped
	Profile *implicit.Profile

	// Request is set only if the Strategy was configured with PassRequestToCallback
	Request *http.Request
}

// VerifyFunc is supplied by the application to map credentials to a user. Returning a
// nil user indicates that the credentials are not valid, in which case info may
// describe why. Returning a non-nil error aborts the attempt.
type VerifyFunc func(ctx context.Context, params *VerifyParams) (user interface{}, info interface{}, err error)

// AuthenticateOptions may be supplied to override configured values for a single call
type AuthenticateOptions struct {
	CallbackURL string
	Scopes      implicit.Scopes
	State       string
}

type Strategy struct {
	config   *Config
	urls     AuthorizationURLBuilder
	profiles ProfileFetcher
	verify   VerifyFunc
}

// New initializes a Strategy. profiles may be nil only if the config skips profile
// loading.
func New(config *Config, urls AuthorizationURLBuilder, profiles ProfileFetcher, verify VerifyFunc) (*Strategy, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if urls == nil {
		return nil, fmt.Errorf("authorization URL builder is required")
	}
	if profiles == nil && !config.skipUserProfile {
		return nil, fmt.Errorf("profile fetcher is required when user profile loading is enabled")
	}
	if verify == nil {
		return nil, fmt.Errorf("verify callback is required")
	}
	return &Strategy{
		config:   config,
		urls:     urls,
		profiles: profiles,
		verify:   verify,
	}, nil
}

// Name identifies the provider this strategy authenticates against
func (s *Strategy) Name() string {
	return s.config.name
}

// Authenticate drives a single authentication attempt, given an incoming request. If
// the request is the initial leg of the flow, the Result carries the URL to which the
// user agent should be redirected; otherwise it carries the terminal Outcome.
func (s *Strategy) Authenticate(req *http.Request, opts *AuthenticateOptions) Result {
	if opts == nil {
		opts = &AuthenticateOptions{}
	}

	callbackURL := opts.CallbackURL
	if callbackURL == "" {
		callbackURL = s.config.callbackURL
	}
	callbackURL = resolveCallbackURL(callbackURL, req, s.config.trustProxy)

	// If the authorization server redirected back to us with an error, then the user
	// denied access or the request was invalid: either way, we've failed
	q := req.URL.Query()
	if q.Has(ParamError) {
		return Result{Outcome: NewFail(parseProtocolError(q))}
	}

	// If we have an access token, this is the callback leg: resolve the user it
	// identifies
	if accessToken := q.Get(ParamAccessToken); accessToken != "" {
		return Result{Outcome: s.resolveUser(req, accessToken, q)}
	}

	// Otherwise, this is the initial leg: send the user to the authorization server
	return Result{Redirect: s.urls.BuildAuthorizationURL(s.authorizationParams(callbackURL, opts))}
}

// authorizationParams builds the query parameters that initiate an implicit grant
func (s *Strategy) authorizationParams(callbackURL string, opts *AuthenticateOptions) url.Values {
	params := url.Values{}
	params.Set("response_type", "token")
	if callbackURL != "" {
		params.Set("redirect_uri", callbackURL)
	}
	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = s.config.scopes
	}
	if len(scopes) > 0 {
		params.Set("scope", scopes.Join(s.config.scopeSeparator))
	}
	if opts.State != "" {
		params.Set("state", opts.State)
	}
	return params
}

// resolveUser handles the callback leg, loading the user's profile (unless configured
// to skip it) and then passing the credentials to our VerifyFunc
func (s *Strategy) resolveUser(req *http.Request, accessToken string, q url.Values) *Outcome {
	profile, err := s.loadProfile(req.Context(), accessToken)
	if err != nil {
		return NewError(err)
	}

	params := &VerifyParams{
		AccessToken: accessToken,
		ExtraParams: extraParams(q),
		Profile:     profile,
	}
	if s.config.passRequestToCallback {
		params.Request = req
	}

	user, info, err := s.callVerify(req.Context(), params)
	if err != nil {
		return NewError(&VerificationError{Cause: err})
	}
	if isNil(user) {
		return NewFail(info)
	}
	return NewSuccess(user, info)
}

func (s *Strategy) loadProfile(ctx context.Context, accessToken string) (profile *implicit.Profile, err error) {
	if s.config.skipUserProfile {
		return &implicit.Profile{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			profile = nil
			err = &ProfileLoadError{Cause: fmt.Errorf("profile fetcher panicked: %v", r)}
		}
	}()
	profile, err = s.profiles.FetchProfile(ctx, accessToken)
	if err != nil {
		return nil, &ProfileLoadError{Cause: err}
	}
	if profile == nil {
		profile = &implicit.Profile{}
	}
	return profile, nil
}

func (s *Strategy) callVerify(ctx context.Context, params *VerifyParams) (user interface{}, info interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			user = nil
			info = nil
			err = fmt.Errorf("verify callback panicked: %v", r)
		}
	}()
	return s.verify(ctx, params)
}

// extraParams returns a copy of q with the reserved credential and error parameters
// removed
func extraParams(q url.Values) url.Values {
	extra := make(url.Values, len(q))
	for key, values := range q {
		switch key {
		case ParamError, ParamAccessToken, ParamRefreshToken:
			continue
		}
		extra[key] = append([]string(nil), values...)
	}
	return extra
}

// isNil treats typed nil pointers the same as an untyped nil, so that a VerifyFunc
// may return a nil *User to indicate that no user was resolved
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
