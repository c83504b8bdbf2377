package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		hash     string
		wantCost int
		wantErr  string
	}{
		{name: "defaults", wantCost: 12},
		{name: "custom cost", cost: "10", wantCost: 10},
		{name: "cost too low", cost: "4", wantErr: "out of range"},
		{name: "cost not a number", cost: "high", wantErr: "invalid BCRYPT_COST"},
		{name: "malformed hash", hash: "not-a-bcrypt-hash", wantErr: "invalid AUTH_PASSWORD_HASH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("AUTH_PASSWORD_HASH", tt.hash)

			cfg, err := NewPasswordConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.False(t, cfg.Enabled())
		})
	}
}

func TestPasswordConfig_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("AUTH_PASSWORD_HASH", string(hash))

	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	require.True(t, cfg.Enabled())

	assert.True(t, cfg.Authenticate("correct horse"))
	assert.False(t, cfg.Authenticate("wrong"))
	assert.False(t, cfg.Authenticate(""))
}

func TestPasswordConfig_AuthenticateDisabled(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	assert.False(t, cfg.Authenticate(""))

	var nilCfg *PasswordConfig
	assert.False(t, nilCfg.Authenticate("anything"))
}

func TestPasswordConfig_HashPassword(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	hash, err := cfg.HashPassword("s3cret")
	require.NoError(t, err)

	cfg.Hash = hash
	assert.True(t, cfg.Authenticate("s3cret"))

	other, err := cfg.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts differ")
}
