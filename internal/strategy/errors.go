package strategy

import (
	"fmt"
	"net/url"
)

// ProtocolError is attached as Info to the Outcome produced when the authorization
// server redirects back to us with an 'error' parameter
type ProtocolError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	URI         string `json:"error_uri,omitempty"`
}

func (e *ProtocolError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization server returned error '%s': %s", e.Code, e.Description)
	}
	return fmt.Sprintf("authorization server returned error '%s'", e.Code)
}

func parseProtocolError(q url.Values) *ProtocolError {
	return &ProtocolError{
		Code:        q.Get("error"),
		Description: q.Get("error_description"),
		URI:         q.Get("error_uri"),
	}
}

// ProfileLoadError indicates that the user's profile could not be fetched using the
// access token we were issued
type ProfileLoadError struct {
	Cause error
}

func (e *ProfileLoadError) Error() string {
	return fmt.Sprintf("failed to obtain user profile: %v", e.Cause)
}

func (e *ProfileLoadError) Unwrap() error {
	return e.Cause
}

// VerificationError indicates that the application-supplied VerifyFunc failed
type VerificationError struct {
	Cause error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("failed to verify credentials: %v", e.Cause)
}

func (e *VerificationError) Unwrap() error {
	return e.Cause
}
