package auth

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for stored passwords.
var HashCost = bcrypt.DefaultCost

// HashPassword returns a salted one-way hash of plain.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), HashCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// VerifyPassword reports whether candidate matches storedHash.
func VerifyPassword(storedHash, candidate string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
}
