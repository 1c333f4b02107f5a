package implicit

import "strings"

// Scopes is an ordered list of OAuth scope identifiers to request from an
// authorization server
type Scopes []string

// ParseScopes accepts the string form of a scope list, with individual scopes
// separated by whitespace and/or commas, and returns the scopes in the order given,
// with duplicates removed
func ParseScopes(value string) Scopes {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	scopes := make(Scopes, 0, len(fields))
	for _, field := range fields {
		if !scopes.Contains(field) {
			scopes = append(scopes, field)
		}
	}
	return scopes
}

// Join formats the scope list as a single value suitable for the 'scope' parameter
// of an authorization request
func (s Scopes) Join(separator string) string {
	return strings.Join(s, separator)
}

// Contains returns true if the given scope is present in the list
func (s Scopes) Contains(scope string) bool {
	for _, existing := range s {
		if existing == scope {
			return true
		}
	}
	return false
}

// Missing returns all scopes in s that are not present in granted
func (s Scopes) Missing(granted Scopes) Scopes {
	missing := make(Scopes, 0)
	for _, scope := range s {
		if !granted.Contains(scope) {
			missing = append(missing, scope)
		}
	}
	return missing
}
