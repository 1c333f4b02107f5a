package implicit

// Profile is the normalized identity of a user as reported by an authorization
// server. When profile loading is skipped, the authenticator supplies an empty Profile
// (i.e. one where IsEmpty returns true) rather than nil.
type Profile struct {
	Provider    string `json:"provider"`
	Id          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`

	// Raw holds the decoded payload returned by the provider, if any
	Raw map[string]interface{} `json:"-"`
}

// IsEmpty returns true if the profile carries no user identity: a profile identifies
// a user if it has either an Id or a Username
func (p *Profile) IsEmpty() bool {
	return p == nil || (p.Id == "" && p.Username == "")
}
