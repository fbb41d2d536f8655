package shared

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateState returns a cryptographically random state token for the
// OAuth2 authorization flow (CSRF protection).
func GenerateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
