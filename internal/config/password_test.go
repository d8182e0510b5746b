package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "")
		t.Setenv("PASSWORD_PEPPER", "")

		cfg, err := NewPasswordConfig()
		require.NoError(t, err)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Empty(t, cfg.Pepper)
	})

	t.Run("custom", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "10")
		t.Setenv("PASSWORD_PEPPER", "pepper")

		cfg, err := NewPasswordConfig()
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.BcryptCost)
		assert.Equal(t, "pepper", cfg.Pepper)
	})

	for _, cost := range []string{"abc", "3", "15"} {
		t.Run("invalid cost "+cost, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", cost)
			cfg, err := NewPasswordConfig()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	hash, err := cfg.HashPassword("correct horse 1")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse 1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, cfg.VerifyPassword("correct horse 1", hash))
	assert.False(t, cfg.VerifyPassword("correct horse 2", hash))
	assert.False(t, cfg.VerifyPassword("", hash))
	assert.False(t, cfg.VerifyPassword("correct horse 1", "not-a-hash"))
}

func TestPasswordConfig_SaltedHashesDiffer(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}
	a, err := cfg.HashPassword("same-password-1")
	require.NoError(t, err)
	b, err := cfg.HashPassword("same-password-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: bcrypt.MinCost, Pepper: "server-secret"}
	plain := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	hash, err := peppered.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("hunter2hunter2", hash))
	assert.False(t, plain.VerifyPassword("hunter2hunter2", hash))
}

func TestPasswordConfig_CheckStrength(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: bcrypt.MinCost}

	tests := []struct {
		name    string
		pw      string
		wantErr string
	}{
		{"ok", "analytical1", ""},
		{"symbol ok", "engine-room", ""},
		{"unicode length", "ñáéíóú1x", ""},
		{"too short", "ab1", "at least 8"},
		{"letters only", "analytical", "digit or symbol"},
		{"too long", strings.Repeat("a1", 40), "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.CheckStrength(tt.pw)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
