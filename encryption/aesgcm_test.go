package encryption_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seborama/sockvcr/encryption"
)

func TestCryptor_AESGCM(t *testing.T) {
	key := []byte("this is a test key______________")

	aesgcm, err := encryption.NewAESGCMWithRandomNonceGenerator(key)
	require.NoError(t, err)
	assert.Equal(t, encryption.KindAESGCM, aesgcm.Kind())

	inputData := []byte("My little secret!")

	ciphertext, nonce, err := aesgcm.Encrypt(inputData)
	require.NoError(t, err)

	plaintext, err := aesgcm.Decrypt(ciphertext, nonce)
	require.NoError(t, err)
	assert.Equal(t, inputData, plaintext)
}

func TestCryptor_AESGCM_BadKeySize(t *testing.T) {
	_, err := encryption.NewAESGCMWithRandomNonceGenerator([]byte("short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key size is not 16 or 32 bytes")
}
