package types

import (
	"github.com/go-playground/validator/v10"
)

// TokenRequest exchanges the operator password for an API token.
type TokenRequest struct {
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries an issued API token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
