package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("vetclinic-2025")
	require.NoError(t, err)
	require.NotEqual(t, "vetclinic-2025", hash)

	assert.NoError(t, hasher.Compare(hash, "vetclinic-2025"))
	assert.Error(t, hasher.Compare(hash, "wrong-password"))
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	hasher := NewBcryptHasher(0)

	hash, err := hasher.Hash("vetclinic-2025")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
