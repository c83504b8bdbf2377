package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// DefaultJWTExpirationHours is the token lifetime when JWT_EXPIRATION_HOURS is unset.
const DefaultJWTExpirationHours = 24

// ErrAuthDisabled is returned when JWT_SECRET is not set. The API then serves
// every route without authentication.
var ErrAuthDisabled = errors.New("authentication disabled: JWT_SECRET is not set")

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig creates a JWT configuration from JWT_SECRET and
// JWT_EXPIRATION_HOURS (default 24). It returns ErrAuthDisabled when no
// secret is configured.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrAuthDisabled
	}

	expirationHours := DefaultJWTExpirationHours
	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		expirationHours = hours
	}

	config := &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if len(c.Secret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
