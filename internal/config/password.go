package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// PasswordConfig holds the operator password used to obtain API tokens.
type PasswordConfig struct {
	BcryptCost int
	// Hash is the bcrypt hash from AUTH_PASSWORD_HASH. Empty disables password login.
	Hash string
}

// NewPasswordConfig reads BCRYPT_COST (default 12) and AUTH_PASSWORD_HASH.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cost = parsed
	}

	config := &PasswordConfig{
		BcryptCost: cost,
		Hash:       os.Getenv("AUTH_PASSWORD_HASH"),
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *PasswordConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	if c.Hash != "" {
		if _, err := bcrypt.Cost([]byte(c.Hash)); err != nil {
			return fmt.Errorf("invalid AUTH_PASSWORD_HASH: %w", err)
		}
	}
	return nil
}

// HashPassword hashes a password with bcrypt. The CLI uses it to produce
// AUTH_PASSWORD_HASH values.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Enabled reports whether password login is configured.
func (c *PasswordConfig) Enabled() bool {
	return c != nil && c.Hash != ""
}

// Authenticate checks pw against the configured hash. It always fails when
// no hash is configured.
func (c *PasswordConfig) Authenticate(pw string) bool {
	if !c.Enabled() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.Hash), []byte(pw)) == nil
}
