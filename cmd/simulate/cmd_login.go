package main

import (
	"flag"
	"net/url"
)

var loginAccessToken string
var loginScope string
var loginExpiresIn string

func initLoginCommand(cmd *flag.FlagSet) {
	cmd.StringVar(&loginAccessToken, "token", "simulated-access-token", "Access token to issue")
	cmd.StringVar(&loginScope, "scope", "", "Scopes to report as granted; defaults to the requested scopes")
	cmd.StringVar(&loginExpiresIn, "expires-in", "3600", "Lifetime of the access token, in seconds")
}

func runLoginCommand(authorizeParams url.Values) url.Values {
	scope := loginScope
	if scope == "" {
		scope = authorizeParams.Get("scope")
	}
	q := url.Values{}
	q.Set("access_token", loginAccessToken)
	q.Set("token_type", "bearer")
	q.Set("expires_in", loginExpiresIn)
	if scope != "" {
		q.Set("scope", scope)
	}
	return q
}
