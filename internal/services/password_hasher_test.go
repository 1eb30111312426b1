package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "secret"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"unicode password", "senha-da-foto-ção"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			assert.True(t, hasher.Verify(tt.password, hash))
			assert.False(t, hasher.Verify(tt.password+"x", hash))
			assert.False(t, hasher.Verify("", hash))
		})
	}
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	h1, err := hasher.Hash("secret")
	require.NoError(t, err)
	h2, err := hasher.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestBcryptHasher_VerifyRejectsGarbageDigest(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	assert.False(t, hasher.Verify("secret", "not-a-bcrypt-hash"))
}

func TestNewBcryptHasher_OutOfRangeCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(bcrypt.MinCost).cost)
}
