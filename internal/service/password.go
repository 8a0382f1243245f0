package service

import (
	"golang.org/x/crypto/bcrypt"
)

// hashPassword hashes a password with the configured bcrypt cost.
func hashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// checkPassword compares a plaintext password against a bcrypt hash.
func checkPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
