// Package adminauth gates the admin TUI with a single local passphrase,
// adapted from the teacher's per-key API authentication down to one hash
// stored in the bridge's own config file. The admin HTTP listener itself
// is not passphrase-gated.
package adminauth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for hashing the admin passphrase.
const BcryptCost = 12

// HashPassphrase hashes an operator-chosen passphrase for storage in the
// bridge config file.
func HashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash passphrase: %w", err)
	}
	return string(hash), nil
}

// VerifyPassphrase reports whether passphrase matches the stored hash.
func VerifyPassphrase(passphrase, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase)) == nil
}
