package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword bcrypt-hashes a password at the default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}

// Authenticate looks up email and checks password against the stored hash.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func Authenticate(ctx context.Context, repo Repository, email, password string) (Record, error) {
	rec, found, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return Record{}, fmt.Errorf("looking up user: %w", err)
	}
	if !found || rec.PasswordHash == "" {
		return Record{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return Record{}, ErrInvalidCredentials
	}
	return rec, nil
}
