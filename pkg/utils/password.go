package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt hashes without truncation
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password must not exceed 72 bytes")

var passwordCost = 12

// SetPasswordCost changes the bcrypt cost of new hashes; values outside bcrypt's range are clamped
func SetPasswordCost(cost int) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	passwordCost = cost
}

// HashPassword generates a bcrypt hash from a plain text password
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	return string(hash), err
}

// ComparePassword reports whether password matches the bcrypt hash
func ComparePassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
