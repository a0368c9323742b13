package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plain := []byte(`{"items":[{"sku":"BGL-001"}]}`)

	sealed, err := Encrypt(plain, "hunter2", "salt")
	require.NoError(t, err)
	require.NotEqual(t, plain, sealed)

	out, err := Decrypt(sealed, "hunter2", "salt")
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestDecryptWrongPassword(t *testing.T) {
	sealed, err := Encrypt([]byte("payload"), "hunter2", "salt")
	require.NoError(t, err)

	_, err = Decrypt(sealed, "wrong", "salt")
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = Decrypt(sealed, "hunter2", "other-salt")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptTruncatedCiphertext(t *testing.T) {
	_, err := Decrypt([]byte("short"), "hunter2", "salt")
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestEncryptUniqueNonces(t *testing.T) {
	a, err := Encrypt([]byte("payload"), "hunter2", "salt")
	require.NoError(t, err)
	b, err := Encrypt([]byte("payload"), "hunter2", "salt")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
