package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomToken returns length hex characters from crypto/rand, or ""
// if the system source fails.
func GenerateRandomToken(length int) string {
	bytes := make([]byte, (length+1)/2)
	_, err := rand.Read(bytes)
	if err != nil {
		return ""
	}
	return hex.EncodeToString(bytes)[:length]
}
