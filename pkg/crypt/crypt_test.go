package crypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/crypt"
)

func TestSealOpen(t *testing.T) {
	s, err := crypt.New("secret")
	require.NoError(t, err)

	sealed, err := s.Seal("eyJhbGciOi.token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "token")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.token", plain)
}

func TestOpenRejectsForeignData(t *testing.T) {
	s, _ := crypt.New("secret")
	other, _ := crypt.New("other-secret")

	sealed, _ := other.Seal("x")
	_, err := s.Open(sealed)
	assert.ErrorIs(t, err, crypt.ErrDecrypt)

	_, err = s.Open("plain-token-from-an-older-build")
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := crypt.New("")
	assert.ErrorIs(t, err, crypt.ErrNoKey)
}
