package accounts

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/golden-vcr/implicit"
	"github.com/golden-vcr/implicit/internal/events"
	"github.com/golden-vcr/implicit/internal/strategy"
	"github.com/stretchr/testify/assert"
)

func Test_Verifier_Verify(t *testing.T) {
	tests := []struct {
		name       string
		params     *strategy.VerifyParams
		producer   *mockProducer
		wantUser   interface{}
		wantInfo   interface{}
		wantErr    string
		wantLogins []events.Login
	}{
		{
			"loaded profile identifies the user",
			&strategy.VerifyParams{
				AccessToken: "tok123",
				ExtraParams: url.Values{},
				Profile: &implicit.Profile{
					Provider:    "twitch",
					Id:          "1337",
					Username:    "bigjoebob",
					DisplayName: "BigJoeBob",
				},
			},
			&mockProducer{},
			&User{
				Provider:    "twitch",
				Id:          "1337",
				Username:    "bigjoebob",
				DisplayName: "BigJoeBob",
			},
			nil,
			"",
			[]events.Login{
				{Provider: "twitch", UserId: "1337", Username: "bigjoebob", Scopes: implicit.Scopes{}},
			},
		},
		{
			"profile without an ID is keyed by username",
			&strategy.VerifyParams{
				AccessToken: "tok123",
				ExtraParams: url.Values{},
				Profile: &implicit.Profile{
					Username: "bigjoebob",
				},
			},
			&mockProducer{},
			&User{
				Provider: "scriptr",
				Id:       "bigjoebob",
				Username: "bigjoebob",
			},
			nil,
			"",
			[]events.Login{
				{Provider: "scriptr", UserId: "bigjoebob", Username: "bigjoebob", Scopes: implicit.Scopes{}},
			},
		},
		{
			"empty profile falls back to token fingerprint",
			&strategy.VerifyParams{
				AccessToken: "tok123",
				ExtraParams: url.Values{"scope": {"list manage"}},
				Profile:     &implicit.Profile{},
			},
			&mockProducer{},
			&User{
				Provider: "scriptr",
				Id:       fingerprint("tok123"),
			},
			nil,
			"",
			[]events.Login{
				{Provider: "scriptr", UserId: fingerprint("tok123"), Scopes: implicit.Scopes{"list", "manage"}},
			},
		},
		{
			"missing scopes are rejected without publishing",
			&strategy.VerifyParams{
				AccessToken: "tok123",
				ExtraParams: url.Values{"scope": {"list"}},
				Profile:     &implicit.Profile{},
			},
			&mockProducer{},
			nil,
			&Rejection{Reason: "required scopes were not granted: manage"},
			"",
			nil,
		},
		{
			"publish failure is an error",
			&strategy.VerifyParams{
				AccessToken: "tok123",
				ExtraParams: url.Values{},
				Profile:     &implicit.Profile{},
			},
			&mockProducer{err: errors.New("channel closed")},
			nil,
			nil,
			"failed to publish login event: channel closed",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier("scriptr", implicit.Scopes{"list", "manage"}, tt.producer)
			user, info, err := v.Verify(context.Background(), tt.params)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantInfo, info)
			assert.Equal(t, tt.wantLogins, tt.producer.logins)
		})
	}
}

func Test_fingerprint(t *testing.T) {
	a := fingerprint("tok123")
	assert.Equal(t, a, fingerprint("tok123"))
	assert.NotEqual(t, a, fingerprint("tok124"))
	assert.Len(t, a, len("token:")+16)
}

type mockProducer struct {
	logins []events.Login
	err    error
}

func (m *mockProducer) PublishLogin(ctx context.Context, login events.Login) error {
	if m.err != nil {
		return m.err
	}
	m.logins = append(m.logins, login)
	return nil
}
