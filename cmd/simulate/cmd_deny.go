package main

import (
	"flag"
	"net/url"
)

var denyError string
var denyDescription string

func initDenyCommand(cmd *flag.FlagSet) {
	cmd.StringVar(&denyError, "error", "access_denied", "OAuth error code to return")
	cmd.StringVar(&denyDescription, "description", "The user denied the request", "Human-readable error description")
}

func runDenyCommand(authorizeParams url.Values) url.Values {
	q := url.Values{}
	q.Set("error", denyError)
	if denyDescription != "" {
		q.Set("error_description", denyDescription)
	}
	return q
}
