package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns a hex SHA-256 digest of a session token. Refresh tokens
// are long high-entropy JWTs, well over bcrypt's 72-byte input limit, so
// they are stored as plain digests and compared in constant time.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyTokenHash reports whether the token matches the stored digest
func VerifyTokenHash(token, hash string) bool {
	if hash == "" {
		return false
	}
	return hmac.Equal([]byte(HashToken(token)), []byte(hash))
}
