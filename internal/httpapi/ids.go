package httpapi

import (
	"crypto/rand"
	"encoding/hex"
)

// generateID creates a short unique identifier for trace and
// conversation correlation.
func generateID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
