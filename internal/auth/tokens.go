// Package auth - tokens.go provides password hashing and one-time invitation
// token handling. Invitation tokens follow the same discipline as passwords:
// the raw value is shown exactly once at creation time and only a bcrypt hash
// is ever stored.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// InviteTokenLength is the length of the random part of an invitation token in bytes
	InviteTokenLength = 32

	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 12
)

// HashPassword hashes a user password with bcrypt.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// GenerateInviteToken creates a new random invitation token.
// Returns: raw token (to deliver once), bcrypt hash (to store).
func GenerateInviteToken() (token string, hash string, err error) {
	randomBytes := make([]byte, InviteTokenLength)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	// URL-safe so the token can be embedded in an invitation link
	token = "qfi_" + base64.RawURLEncoding.EncodeToString(randomBytes)

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(token), BcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash invitation token: %w", err)
	}

	return token, string(hashBytes), nil
}

// ValidateInviteToken checks if a provided token matches the stored hash.
func ValidateInviteToken(providedToken, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(providedToken)) == nil
}

// ExtractBearerToken extracts the session token from an Authorization header.
// Expected format: "Bearer <token>"
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header is empty")
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("authorization header must start with 'Bearer '")
	}

	token := strings.TrimPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)

	if token == "" {
		return "", errors.New("token is empty after Bearer prefix")
	}

	return token, nil
}
