// Package userauth exposes the HTTP endpoints that carry a user through an OAuth 2.0
// Implicit Grant flow, as described here:
//
// - https://datatracker.ietf.org/doc/html/rfc6749#section-4.2
//
// The user first hits GET /auth/start, which redirects them to the authorization
// server's authorize endpoint with response_type=token, along with a CSRF token in the
// 'state' parameter. Once the user grants access, the authorization server redirects
// them back to GET /auth/callback.
//
// With the implicit grant, the access token is delivered in the URL fragment, which
// the user agent never sends to us. So when /auth/callback is requested with no query
// string at all, we respond with a tiny relay page whose script copies the fragment
// into the query string and reloads. On that second request we verify the CSRF token,
// then hand the request to the authentication strategy, which resolves the access
// token to a user (or fails, if the authorization server returned an error).
//
// We don't establish a session: the result of a successful login is simply rendered
// as JSON, and any interested parties can consume the login event that's published as
// a side effect of verifying the user.
package userauth
