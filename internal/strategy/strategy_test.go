package strategy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/golden-vcr/implicit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Strategy_Authenticate_initialLeg(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		requestURL string
		callOpts   *AuthenticateOptions
		wantParams url.Values
	}{
		{
			"relative callback URL is resolved against the request URL",
			Options{
				ClientId:    "my-client",
				CallbackURL: "/auth/cb",
			},
			"https://app.example/login",
			nil,
			url.Values{
				"response_type": {"token"},
				"redirect_uri":  {"https://app.example/auth/cb"},
			},
		},
		{
			"absolute callback URL is used unchanged",
			Options{
				ClientId:    "my-client",
				CallbackURL: "https://elsewhere.example/cb",
			},
			"https://app.example/login",
			nil,
			url.Values{
				"response_type": {"token"},
				"redirect_uri":  {"https://elsewhere.example/cb"},
			},
		},
		{
			"configured scopes are joined with the default separator",
			Options{
				ClientId:    "my-client",
				CallbackURL: "https://app.example/auth/cb",
				Scopes:      implicit.Scopes{"list", "manage"},
			},
			"https://app.example/login",
			nil,
			url.Values{
				"response_type": {"token"},
				"redirect_uri":  {"https://app.example/auth/cb"},
				"scope":         {"list manage"},
			},
		},
		{
			"custom scope separator is honored",
			Options{
				ClientId:       "my-client",
				CallbackURL:    "https://app.example/auth/cb",
				Scopes:         implicit.Scopes{"list", "manage"},
				ScopeSeparator: ",",
			},
			"https://app.example/login",
			nil,
			url.Values{
				"response_type": {"token"},
				"redirect_uri":  {"https://app.example/auth/cb"},
				"scope":         {"list,manage"},
			},
		},
		{
			"per-call options override callback URL and scopes, and supply state",
			Options{
				ClientId:    "my-client",
				CallbackURL: "/auth/cb",
				Scopes:      implicit.Scopes{"list"},
			},
			"http://app.example/login",
			&AuthenticateOptions{
				CallbackURL: "/other/cb",
				Scopes:      implicit.Scopes{"execute"},
				State:       "abc123",
			},
			url.Values{
				"response_type": {"token"},
				"redirect_uri":  {"http://app.example/other/cb"},
				"scope":         {"execute"},
				"state":         {"abc123"},
			},
		},
		{
			"missing callback URL omits redirect_uri",
			Options{
				ClientId: "my-client",
			},
			"https://app.example/login",
			nil,
			url.Values{
				"response_type": {"token"},
			},
		},
		{
			"query params unrelated to the flow still yield a redirect",
			Options{
				ClientId:    "my-client",
				CallbackURL: "/auth/cb",
			},
			"https://app.example/login?next=%2Fhome",
			nil,
			url.Values{
				"response_type": {"token"},
				"redirect_uri":  {"https://app.example/auth/cb"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifyCalled := false
			s := newTestStrategy(t, tt.opts, nil, func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
				verifyCalled = true
				return nil, nil, nil
			})
			req := httptest.NewRequest(http.MethodGet, tt.requestURL, nil)
			result := s.Authenticate(req, tt.callOpts)

			assert.True(t, result.IsRedirect())
			assert.Nil(t, result.Outcome)
			assert.False(t, verifyCalled)

			u, err := url.Parse(result.Redirect)
			assert.NoError(t, err)
			assert.Equal(t, "https://auth.example/authorize", u.Scheme+"://"+u.Host+u.Path)
			assert.Equal(t, tt.wantParams, u.Query())
		})
	}
}

func Test_Strategy_Authenticate_error(t *testing.T) {
	tests := []struct {
		name       string
		requestURL string
		wantInfo   *ProtocolError
	}{
		{
			"error param yields fail with protocol error details",
			"https://app.example/auth/cb?error=access_denied&error_description=User+said+no",
			&ProtocolError{Code: "access_denied", Description: "User said no"},
		},
		{
			"error param takes precedence over access_token",
			"https://app.example/auth/cb?access_token=tok123&error=server_error",
			&ProtocolError{Code: "server_error"},
		},
		{
			"empty error param still yields fail",
			"https://app.example/auth/cb?error=",
			&ProtocolError{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifyCalled := false
			s := newTestStrategy(t, Options{ClientId: "my-client"}, nil, func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
				verifyCalled = true
				return "someone", nil, nil
			})
			req := httptest.NewRequest(http.MethodGet, tt.requestURL, nil)
			result := s.Authenticate(req, nil)

			require.NotNil(t, result.Outcome)
			assert.Equal(t, OutcomeFail, result.Outcome.Kind)
			assert.Equal(t, tt.wantInfo, result.Outcome.Info)
			assert.Nil(t, result.Outcome.User)
			assert.Empty(t, result.Redirect)
			assert.False(t, verifyCalled)
		})
	}
}

func Test_Strategy_Authenticate_callbackLeg(t *testing.T) {
	type testUser struct {
		Name string
	}
	verifyErr := errors.New("user store is down")

	tests := []struct {
		name       string
		verify     VerifyFunc
		wantKind   OutcomeKind
		wantUser   interface{}
		wantInfo   interface{}
		wantErrMsg string
	}{
		{
			"user returned by verify yields success",
			func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
				return &testUser{Name: "bob"}, "welcome", nil
			},
			OutcomeSuccess,
			&testUser{Name: "bob"},
			"welcome",
			"",
		},
		{
			"nil user with info yields fail carrying info",
			func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
				return nil, "unknown user", nil
			},
			OutcomeFail,
			nil,
			"unknown user",
			"",
		},
		{
			"typed nil user yields fail",
			func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
				var u *testUser
				return u, nil, nil
			},
			OutcomeFail,
			nil,
			nil,
			"",
		},
		{
			"error from verify yields error",
			func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
				return nil, nil, verifyErr
			},
			OutcomeError,
			nil,
			nil,
			"failed to verify credentials: user store is down",
		},
		{
			"panic in verify yields error",
			func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
				panic("oh no")
			},
			OutcomeError,
			nil,
			nil,
			"failed to verify credentials: verify callback panicked: oh no",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStrategy(t, Options{ClientId: "my-client"}, nil, tt.verify)
			req := httptest.NewRequest(http.MethodGet, "https://app.example/auth/cb?access_token=tok123", nil)
			result := s.Authenticate(req, nil)

			require.NotNil(t, result.Outcome)
			assert.Equal(t, tt.wantKind, result.Outcome.Kind)
			assert.Equal(t, tt.wantUser, result.Outcome.User)
			assert.Equal(t, tt.wantInfo, result.Outcome.Info)
			if tt.wantErrMsg == "" {
				assert.NoError(t, result.Outcome.Err)
			} else {
				assert.EqualError(t, result.Outcome.Err, tt.wantErrMsg)
				var verificationErr *VerificationError
				assert.ErrorAs(t, result.Outcome.Err, &verificationErr)
			}
		})
	}
}

func Test_Strategy_Authenticate_verifyParams(t *testing.T) {
	t.Run("skipped profile yields empty profile and no request", func(t *testing.T) {
		var got *VerifyParams
		s := newTestStrategy(t, Options{ClientId: "my-client"}, nil, func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
			got = params
			return "someone", nil, nil
		})
		req := httptest.NewRequest(http.MethodGet, "https://app.example/auth/cb?access_token=tok123&refresh_token=nope&token_type=bearer&expires_in=3600&state=xyz", nil)
		result := s.Authenticate(req, nil)

		require.NotNil(t, result.Outcome)
		assert.Equal(t, OutcomeSuccess, result.Outcome.Kind)
		require.NotNil(t, got)
		assert.Equal(t, "tok123", got.AccessToken)
		assert.Equal(t, "", got.RefreshToken)
		assert.Equal(t, &implicit.Profile{}, got.Profile)
		assert.True(t, got.Profile.IsEmpty())
		assert.Nil(t, got.Request)
		assert.Equal(t, url.Values{
			"token_type": {"bearer"},
			"expires_in": {"3600"},
			"state":      {"xyz"},
		}, got.ExtraParams)
	})
	t.Run("request is passed when configured", func(t *testing.T) {
		var got *VerifyParams
		s := newTestStrategy(t, Options{ClientId: "my-client", PassRequestToCallback: true}, nil, func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
			got = params
			return "someone", nil, nil
		})
		req := httptest.NewRequest(http.MethodGet, "https://app.example/auth/cb?access_token=tok123", nil)
		s.Authenticate(req, nil)

		require.NotNil(t, got)
		assert.Same(t, req, got.Request)
		assert.Equal(t, url.Values{}, got.ExtraParams)
	})
	t.Run("loaded profile is supplied to verify", func(t *testing.T) {
		profiles := &mockProfileFetcher{
			profile: &implicit.Profile{Provider: "scriptr", Id: "1337", Username: "bob"},
		}
		var got *VerifyParams
		s := newTestStrategy(t, Options{ClientId: "my-client", LoadUserProfile: true}, profiles, func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
			got = params
			return params.Profile.Id, nil, nil
		})
		req := httptest.NewRequest(http.MethodGet, "https://app.example/auth/cb?access_token=tok123", nil)
		result := s.Authenticate(req, nil)

		require.NotNil(t, result.Outcome)
		assert.Equal(t, OutcomeSuccess, result.Outcome.Kind)
		assert.Equal(t, "1337", result.Outcome.User)
		assert.Equal(t, []string{"tok123"}, profiles.accessTokens)
		require.NotNil(t, got)
		assert.Equal(t, "bob", got.Profile.Username)
	})
}

func Test_Strategy_Authenticate_profileLoadFailure(t *testing.T) {
	tests := []struct {
		name       string
		profiles   *mockProfileFetcher
		wantErrMsg string
	}{
		{
			"fetch error yields error outcome wrapping cause",
			&mockProfileFetcher{err: errors.New("got response 503")},
			"failed to obtain user profile: got response 503",
		},
		{
			"fetch panic yields error outcome",
			&mockProfileFetcher{panicValue: "kaboom"},
			"failed to obtain user profile: profile fetcher panicked: kaboom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifyCalled := false
			s := newTestStrategy(t, Options{ClientId: "my-client", LoadUserProfile: true}, tt.profiles, func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
				verifyCalled = true
				return "someone", nil, nil
			})
			req := httptest.NewRequest(http.MethodGet, "https://app.example/auth/cb?access_token=tok123", nil)
			result := s.Authenticate(req, nil)

			require.NotNil(t, result.Outcome)
			assert.Equal(t, OutcomeError, result.Outcome.Kind)
			assert.EqualError(t, result.Outcome.Err, tt.wantErrMsg)
			var profileErr *ProfileLoadError
			assert.ErrorAs(t, result.Outcome.Err, &profileErr)
			if tt.profiles.err != nil {
				assert.ErrorIs(t, result.Outcome.Err, tt.profiles.err)
			}
			assert.False(t, verifyCalled)
		})
	}
}

func Test_Strategy_Authenticate_isDeterministic(t *testing.T) {
	verify := func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
		return "user-" + params.AccessToken, map[string]string{"scope": params.ExtraParams.Get("scope")}, nil
	}
	opts := Options{
		ClientId:    "my-client",
		CallbackURL: "/auth/cb",
		Scopes:      implicit.Scopes{"list", "manage"},
	}
	a := newTestStrategy(t, opts, nil, verify)
	b := newTestStrategy(t, opts, nil, verify)

	for _, target := range []string{
		"https://app.example/login",
		"https://app.example/auth/cb?access_token=tok123&scope=list",
		"https://app.example/auth/cb?error=access_denied",
	} {
		resultA := a.Authenticate(httptest.NewRequest(http.MethodGet, target, nil), &AuthenticateOptions{State: "s"})
		resultB := b.Authenticate(httptest.NewRequest(http.MethodGet, target, nil), &AuthenticateOptions{State: "s"})
		assert.Equal(t, resultA, resultB)
	}
}

func Test_New(t *testing.T) {
	verify := func(ctx context.Context, params *VerifyParams) (interface{}, interface{}, error) {
		return nil, nil, nil
	}
	skipping, err := NewConfig(Options{ClientId: "my-client"})
	require.NoError(t, err)
	loading, err := NewConfig(Options{ClientId: "my-client", LoadUserProfile: true})
	require.NoError(t, err)

	_, err = New(skipping, &mockURLBuilder{}, nil, verify)
	assert.NoError(t, err)

	_, err = New(loading, &mockURLBuilder{}, nil, verify)
	assert.Error(t, err)

	_, err = New(skipping, nil, nil, verify)
	assert.Error(t, err)

	_, err = New(skipping, &mockURLBuilder{}, nil, nil)
	assert.Error(t, err)

	_, err = New(nil, &mockURLBuilder{}, nil, verify)
	assert.Error(t, err)
}

func newTestStrategy(t *testing.T, opts Options, profiles *mockProfileFetcher, verify VerifyFunc) *Strategy {
	opts.AuthorizationURL = "https://auth.example/authorize"
	config, err := NewConfig(opts)
	require.NoError(t, err)

	var fetcher ProfileFetcher
	if profiles != nil {
		fetcher = profiles
	}
	s, err := New(config, &mockURLBuilder{base: config.AuthorizationURL()}, fetcher, verify)
	require.NoError(t, err)
	return s
}

type mockURLBuilder struct {
	base string
}

func (m *mockURLBuilder) BuildAuthorizationURL(params url.Values) string {
	return m.base + "?" + params.Encode()
}

type mockProfileFetcher struct {
	profile    *implicit.Profile
	err        error
	panicValue interface{}

	accessTokens []string
}

func (m *mockProfileFetcher) FetchProfile(ctx context.Context, accessToken string) (*implicit.Profile, error) {
	m.accessTokens = append(m.accessTokens, accessToken)
	if m.panicValue != nil {
		panic(m.panicValue)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}
