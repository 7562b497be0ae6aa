package utils

import (
	"crypto/rand" // Secure randomness for generated passwords
	"math/big"    // Uniform index selection

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// BcryptHasher hashes and verifies passwords with bcrypt
type BcryptHasher struct {
	Cost int // Bcrypt cost, bcrypt.DefaultCost when zero
}

// Hash returns the bcrypt hash of password
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether password matches hash
func (h BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const (
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*"
)

// GeneratePassword returns a random 12 character password with at least one
// upper-case letter, one digit and one special character
func GeneratePassword() (string, error) {
	sets := []string{upperChars, digitChars, specialChars}
	all := upperChars + lowerChars + digitChars + specialChars
	out := make([]byte, 12)
	for i := range out {
		set := all
		if i < len(sets) {
			set = sets[i] // Guarantee one of each required class
		}
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	// Shuffle so the required classes are not always first
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		out[i], out[j.Int64()] = out[j.Int64()], out[i]
	}
	return string(out), nil
}

func pick(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
