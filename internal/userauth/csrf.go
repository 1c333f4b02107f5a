package userauth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const csrfTokenLifetime = 15 * time.Minute

type csrfBuffer struct {
	tokens []csrfToken
	mu     sync.Mutex
	now    func() time.Time
}

type csrfToken struct {
	value     string
	expiresAt time.Time
}

func newCsrfBuffer() *csrfBuffer {
	return &csrfBuffer{
		tokens: make([]csrfToken, 0, 8),
		now:    time.Now,
	}
}

func (b *csrfBuffer) generate() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	tokenValue := hex.EncodeToString(bytes)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = append(b.tokens, csrfToken{
		value:     tokenValue,
		expiresAt: b.now().Add(csrfTokenLifetime),
	})
	return tokenValue
}

// check reports whether tokenValue was issued by generate and has not yet expired or
// been checked; each token is accepted at most once
func (b *csrfBuffer) check(tokenValue string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	isValid := false
	retained := make([]csrfToken, 0, len(b.tokens))
	for _, token := range b.tokens {
		// If the token has expired, purge it
		if token.expiresAt.Before(now) {
			continue
		}

		// A matching token is consumed
		if tokenValue != "" && token.value == tokenValue {
			isValid = true
			continue
		}

		retained = append(retained, token)
	}
	b.tokens = retained

	return isValid
}
