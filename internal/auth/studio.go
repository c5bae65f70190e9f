package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Studio roles. Only the host may publish commands.
const (
	RoleHost   = "host"
	RoleViewer = "viewer"
)

// HashPassphrase hashes a studio passphrase. An empty passphrase stays empty
// and marks an open studio.
func HashPassphrase(passphrase string) (string, error) {
	if passphrase == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash passphrase: %w", err)
	}
	return string(hash), nil
}

// CheckPassphrase reports whether passphrase opens a studio with the given
// stored hash.
func CheckPassphrase(hash, passphrase string) bool {
	if hash == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase)) == nil
}
