// Package accounts decides which user an implicit-grant access token identifies. Its
// Verifier is the application-supplied callback that the authentication strategy
// invokes once the authorization server has redirected back with a token.
package accounts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/golden-vcr/implicit"
	"github.com/golden-vcr/implicit/internal/events"
	"github.com/golden-vcr/implicit/internal/strategy"
)

// User is the identity established by a successful login
type User struct {
	Provider    string `json:"provider"`
	Id          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Rejection is supplied as info when a token is refused
type Rejection struct {
	Reason string `json:"reason"`
}

type LoginProducer interface {
	PublishLogin(ctx context.Context, login events.Login) error
}

type Verifier struct {
	provider       string
	requiredScopes implicit.Scopes
	producer       LoginProducer
}

func NewVerifier(provider string, requiredScopes implicit.Scopes, producer LoginProducer) *Verifier {
	return &Verifier{
		provider:       provider,
		requiredScopes: requiredScopes,
		producer:       producer,
	}
}

// Verify satisfies strategy.VerifyFunc
func (v *Verifier) Verify(ctx context.Context, params *strategy.VerifyParams) (interface{}, interface{}, error) {
	// If the authorization server tells us which scopes it granted, verify that we got
	// everything we asked for
	granted := implicit.ParseScopes(params.ExtraParams.Get("scope"))
	if len(granted) > 0 {
		if missing := v.requiredScopes.Missing(granted); len(missing) > 0 {
			return nil, &Rejection{Reason: fmt.Sprintf("required scopes were not granted: %s", missing.Join(", "))}, nil
		}
	}

	user := v.resolveUser(params)
	login := events.Login{
		Provider: user.Provider,
		UserId:   user.Id,
		Username: user.Username,
		Scopes:   granted,
	}
	if err := v.producer.PublishLogin(ctx, login); err != nil {
		return nil, nil, fmt.Errorf("failed to publish login event: %w", err)
	}
	return user, nil, nil
}

// resolveUser builds a User from the profile if one was loaded, keyed by the
// profile's ID or (if the provider reported no ID) its username; otherwise the user is
// identified only by a fingerprint of their access token
func (v *Verifier) resolveUser(params *strategy.VerifyParams) *User {
	if !params.Profile.IsEmpty() {
		provider := params.Profile.Provider
		if provider == "" {
			provider = v.provider
		}
		id := params.Profile.Id
		if id == "" {
			id = params.Profile.Username
		}
		return &User{
			Provider:    provider,
			Id:          id,
			Username:    params.Profile.Username,
			DisplayName: params.Profile.DisplayName,
		}
	}
	return &User{
		Provider: v.provider,
		Id:       fingerprint(params.AccessToken),
	}
}

func fingerprint(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return "token:" + hex.EncodeToString(sum[:8])
}
