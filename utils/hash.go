package utils

import "golang.org/x/crypto/bcrypt"

// HashSecret hashes an API client secret with the given bcrypt cost.
// Non-positive cost means bcrypt.DefaultCost.
func HashSecret(secret string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	return string(bytes), err
}

func CheckSecret(hash, secret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}
