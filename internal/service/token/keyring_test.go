package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyRing_Validation(t *testing.T) {
	_, err := NewKeyRing(nil)
	require.Error(t, err)

	k1, err := GenerateKeypair("k1")
	require.NoError(t, err)

	_, err = NewKeyRing([]Keypair{{KID: "", Private: k1.Private}})
	require.Error(t, err)

	_, err = NewKeyRing([]Keypair{k1, k1})
	require.Error(t, err)
}

func TestKeyRing_CurrentAndLookup(t *testing.T) {
	k1, err := GenerateKeypair("k1")
	require.NoError(t, err)
	k2, err := GenerateKeypair("k2")
	require.NoError(t, err)

	ring, err := NewKeyRing([]Keypair{k1, k2})
	require.NoError(t, err)

	assert.Equal(t, "k1", ring.Current().KID)
	assert.Equal(t, []string{"k1", "k2"}, ring.KIDs())

	got, ok := ring.Lookup("k2")
	require.True(t, ok)
	assert.Equal(t, k2.Public, got.Public)

	_, ok = ring.Lookup("missing")
	assert.False(t, ok)
}

func TestKeyRing_Rotate(t *testing.T) {
	k1, err := GenerateKeypair("k1")
	require.NoError(t, err)
	k2, err := GenerateKeypair("k2")
	require.NoError(t, err)

	ring, err := NewKeyRing([]Keypair{k1})
	require.NoError(t, err)

	// New primary in front, old key retained for validation.
	require.NoError(t, ring.Rotate([]Keypair{k2, k1}))
	assert.Equal(t, "k2", ring.Current().KID)

	_, ok := ring.Lookup("k1")
	assert.True(t, ok)

	// Dropping the old key removes it entirely.
	require.NoError(t, ring.Rotate([]Keypair{k2}))
	_, ok = ring.Lookup("k1")
	assert.False(t, ok)

	// A bad rotation leaves the ring untouched.
	require.Error(t, ring.Rotate(nil))
	assert.Equal(t, "k2", ring.Current().KID)
}
