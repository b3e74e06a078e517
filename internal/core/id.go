package core

import (
	"crypto/rand"
	"encoding/hex"
)

const idLength = 24

// NewID generates a 24-character hex record identifier.
func NewID() string {
	buf := make([]byte, idLength/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic("core: read random bytes: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

// ValidID reports whether s has the shape of a record identifier.
// Malformed ids are rejected before any store lookup so store internals
// never leak into error responses.
func ValidID(s string) bool {
	if len(s) != idLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
