// Package auth provides small cryptographic helpers for login flows built on
// top of the transport: asymmetric decryption of a byte blob and password
// hashing/verification.
//
// The helpers have no interaction with the framing or connection engine; a
// typical use is decrypting a client's RSA-encrypted credentials packet and
// verifying the password against a stored bcrypt hash.
package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt cost bounds, re-exported for callers tuning Hash.
const (
	MinCost     = bcrypt.MinCost
	MaxCost     = bcrypt.MaxCost
	DefaultCost = bcrypt.DefaultCost
)

// Decrypt decrypts a PKCS#1 v1.5 ciphertext with the given RSA private key and
// returns the plaintext bytes.
func Decrypt(key *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	plaintext, err := rsa.DecryptPKCS1v15(rand.Reader, key, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("rsa decrypt: %w", err)
	}

	return plaintext, nil
}

// Hash hashes a plaintext password with bcrypt at the given cost.
// cost must be between MinCost (4) and MaxCost (31); DefaultCost is 10.
func Hash(plaintext string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether a plaintext password matches a bcrypt hash.
// An error is returned only for malformed hashes, not for mismatches.
func Verify(plaintext, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, fmt.Errorf("bcrypt verify: %w", err)
}
