package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// GenerateLoginToken returns a random one-time token and its SHA-256 hash.
// Only the hash is persisted; the raw token never touches the database.
func GenerateLoginToken() (token string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, HashLoginToken(token), nil
}

// HashLoginToken hashes a raw login token for storage or lookup.
func HashLoginToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
