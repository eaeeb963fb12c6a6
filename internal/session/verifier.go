package session

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks a username and password pair.
type CredentialVerifier interface {
	Verify(user, password string) bool
}

// StaticVerifier compares against one fixed username and password.
type StaticVerifier struct {
	User     string
	Password string
}

func (v StaticVerifier) Verify(user, password string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(v.User)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(v.Password)) == 1
	return userMatch && passwordMatch
}

// BcryptVerifier compares against a fixed username and a bcrypt password hash.
type BcryptVerifier struct {
	user string
	hash []byte
}

func NewBcryptVerifier(user, hash string) (*BcryptVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid bcrypt hash: %w", err)
	}
	return &BcryptVerifier{user: user, hash: []byte(hash)}, nil
}

func (v *BcryptVerifier) Verify(user, password string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(v.user)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
	return userMatch && passwordMatch
}
