package oauth2client

import (
	"encoding/json"
	"fmt"

	"github.com/golden-vcr/implicit"
)

// parseProfile normalizes a decoded profile payload, accepting the field names used
// by most providers (including OpenID Connect userinfo responses)
func parseProfile(provider string, raw map[string]interface{}) *implicit.Profile {
	return &implicit.Profile{
		Provider:    provider,
		Id:          firstString(raw, "id", "sub", "user_id"),
		Username:    firstString(raw, "username", "login", "preferred_username"),
		DisplayName: firstString(raw, "display_name", "displayName", "name"),
		Email:       firstString(raw, "email"),
		Raw:         raw,
	}
}

// firstString returns the value of the first of the given keys that is present in m,
// formatted as a string: numeric IDs are common, and are expected to be decoded as
// json.Number so that values beyond 2^53 are not rounded
func firstString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
