package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := &BcryptHasher{Cost: bcrypt.MinCost}

	hashed, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hashed)

	assert.NoError(t, hasher.Compare(hashed, "correct horse"))
	assert.Error(t, hasher.Compare(hashed, "battery staple"))
	assert.Error(t, hasher.Compare("not-a-hash", "correct horse"))
}

func TestNewBcryptHasherUsesDefaultCost(t *testing.T) {
	hasher := NewBcryptHasher()
	assert.Equal(t, bcrypt.DefaultCost, hasher.Cost)
}
