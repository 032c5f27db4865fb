// Package hash provides content hashing for duplicate detection of
// generated questions.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of text. The empty
// string is a defined input and hashes to the usual empty-string digest;
// callers treat "no text" as "no hash" before calling.
func SHA256Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
