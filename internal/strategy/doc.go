// Package strategy implements client-side authentication using the OAuth 2.0 Implicit
// Grant flow, as described in https://datatracker.ietf.org/doc/html/rfc6749#section-4.2
//
// With the implicit grant, the authorization server issues an access token directly
// in its redirect back to our callback URL: there is no authorization code and no
// token exchange, so our app never needs a client secret. A single authentication
// attempt therefore spans two HTTP round-trips through the same entry point:
//
// - On the initial leg, the request carries neither an 'access_token' nor an 'error'
// parameter, and we respond by redirecting the user agent to the authorization server
// with response_type=token.
//
// - On the callback leg, the user agent returns carrying either an 'access_token' (in
// which case we optionally load the user's profile, then hand the credentials to an
// application-supplied VerifyFunc to decide who the user is) or an 'error' (in which
// case authentication fails).
//
// Each call to Strategy.Authenticate yields exactly one Result: either a redirect or
// a terminal Outcome (success, fail, or error). Authenticate never returns an error
// and never panics; all faults are folded into an error Outcome.
package strategy
