package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Gate authorizes administrative operations against a single shared
// secret fixed at startup. There are no sessions and no per-user
// credentials; every gated request presents the secret itself.
type Gate struct {
	key  []byte
	hash []byte
}

// NewGate builds a gate from the configured secret. When keyHash is
// set it holds a bcrypt hash of the secret and takes precedence, so
// the plaintext never has to live in the environment.
func NewGate(key, keyHash string) *Gate {
	return &Gate{key: []byte(key), hash: []byte(keyHash)}
}

// Authorize reports whether the supplied credential matches the
// configured secret. The plaintext comparison is constant-time.
func (g *Gate) Authorize(supplied string) bool {
	if supplied == "" {
		return false
	}
	if len(g.hash) > 0 {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(supplied)) == nil
	}
	if len(g.key) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(g.key, []byte(supplied)) == 1
}
