// Package main is a development utility for generating a JWT signing secret
// and a seed user with its bcrypt hash pre-computed. It prints the secret,
// the password hash, and a ready-to-run SQL INSERT statement so developers
// can quickly seed a usable account in a local database without running the
// full server flow. Do not use generated values in production — set
// QF_JWT_SECRET from a secret manager and create users through the API.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Generate random bytes for the signing secret
	secretBytes := make([]byte, 48)
	if _, err := rand.Read(secretBytes); err != nil {
		log.Fatal(err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	// Generate a random dev password
	passwordBytes := make([]byte, 16)
	if _, err := rand.Read(passwordBytes); err != nil {
		log.Fatal(err)
	}
	password := base64.RawURLEncoding.EncodeToString(passwordBytes)

	// Hash with bcrypt
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("==========================================================")
	fmt.Println("Development Credentials Generated")
	fmt.Println("==========================================================")
	fmt.Printf("\nJWT Secret (export QF_JWT_SECRET): %s\n", secret)
	fmt.Printf("\nDev Password: %s\n", password)
	fmt.Printf("\nPassword Hash: %s\n", string(hashBytes))
	fmt.Println("\n==========================================================")
	fmt.Println("SQL Insert:")
	fmt.Println("==========================================================")
	fmt.Printf(`
INSERT INTO users (id, email, name, password_hash)
VALUES (gen_random_uuid(), 'admin@dev.local', 'Dev Admin', '%s');
`, string(hashBytes))
	fmt.Println("\n==========================================================")
}
