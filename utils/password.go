package utils

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword is returned for passwords outside the accepted length.
var ErrWeakPassword = errors.New("password must be 8 to 72 characters")

// HashPassword validates the length and returns the bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	// bcrypt only reads the first 72 bytes
	if utf8.RuneCountInString(password) < 8 || len(password) > 72 {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
