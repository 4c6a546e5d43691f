package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past 72 bytes; longer passwords are refused outright.
const maxPasswordBytes = 72

var ErrPasswordLength = errors.New("password must be 1 to 72 bytes")

func HashPassword(p string) (string, error) {
	if len(p) == 0 || len(p) > maxPasswordBytes {
		return "", ErrPasswordLength
	}
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword is nil only when plain matches hash.
func VerifyPassword(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// HashCost reports the work factor of a stored hash, for flagging weak entries.
func HashCost(hash string) (int, error) {
	return bcrypt.Cost([]byte(hash))
}
