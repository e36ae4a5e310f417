package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes an account password with the configured
// cost. Customer and restaurant accounts both store only this hash.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored hash against a login attempt. Used
// by the shared login endpoint for both account kinds.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
