package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed = errors.New("token hashing failed")
	ErrEmptyToken    = errors.New("token is empty")
	ErrTokenMismatch = errors.New("token does not match")
)

// TokenBytes is the entropy of a generated invite token.
const TokenBytes = 32

// TokenHasher hashes one-time tokens for storage and checks them later.
type TokenHasher interface {
	Hash(token string) (string, error)
	Compare(hashedToken, token string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a new token hasher using bcrypt
func NewBcryptHasher(cost int) TokenHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(token), b.cost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(bytes), nil
}

func (b *bcryptHasher) Compare(hashedToken, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(token)); err != nil {
		return ErrTokenMismatch
	}
	return nil
}

// GenerateToken returns a random hex token.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
