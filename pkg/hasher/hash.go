package hasher

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of s.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Fingerprint is a short stable digest for logging personal data such as phone numbers.
func Fingerprint(s string) string {
	if s == "" {
		return ""
	}
	return Hash(s)[:12]
}
