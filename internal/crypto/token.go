package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// HashToken digests a token for at-rest storage. Refresh tokens are never
// persisted in plaintext.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// TokenHashEqual compares two token hashes in constant time.
func TokenHashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
