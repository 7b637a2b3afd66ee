// Package auth guards catalog mutations behind a shared secret.
package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/bookstore/core"
)

// HeaderName is the request header carrying the credential.
const HeaderName = "x-api-key"

const digestSize = 32

// Gate admits operations whose credential equals the configured secret.
// A Gate built from an empty secret admits nothing.
type Gate struct {
	digest []byte
}

// NewGate returns a Gate for secret.
func NewGate(secret string) *Gate {
	if secret == "" {
		return &Gate{}
	}
	return &Gate{digest: digest(secret)}
}

// Check returns an error wrapping core.ErrUnauthorized unless credential
// matches the secret exactly.
func (g *Gate) Check(credential string) error {
	if credential == "" {
		return fmt.Errorf("%w: missing credential", core.ErrUnauthorized)
	}
	if g == nil || g.digest == nil {
		return fmt.Errorf("%w: no secret configured", core.ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare(g.digest, digest(credential)) != 1 {
		return fmt.Errorf("%w: invalid credential", core.ErrUnauthorized)
	}
	return nil
}

// Guard runs op only if credential passes g.Check.
func Guard[T any](g *Gate, credential string, op func() (T, error)) (T, error) {
	if err := g.Check(credential); err != nil {
		var zero T
		return zero, err
	}
	return op()
}

// digest returns the fixed-size BLAKE2b sum of s.
func digest(s string) []byte {
	h, _ := blake2b.New(digestSize, nil)
	h.Write([]byte(s))
	return h.Sum(nil)
}
