package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 96-bit hex ID, used for request ids and
// session token jtis.
func NewID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
