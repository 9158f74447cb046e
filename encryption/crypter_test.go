package encryption_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seborama/sockvcr/encryption"
	cryptoerr "github.com/seborama/sockvcr/encryption/errors"
)

func TestCrypter_SealOpen(t *testing.T) {
	key := []byte("12345678901234567890123456789012")

	for _, kind := range []string{encryption.KindAESGCM, encryption.KindChaCha20Poly1305} {
		t.Run(kind, func(t *testing.T) {
			c, err := encryption.NewCrypterForKind(kind, key)
			require.NoError(t, err)

			envelope, err := c.Seal([]byte("GET / HTTP/1.1\r\n\r\n"))
			require.NoError(t, err)
			require.True(t, encryption.IsEncrypted(envelope))

			gotKind, err := encryption.EnvelopeKind(envelope)
			require.NoError(t, err)
			assert.Equal(t, kind, gotKind)

			plaintext, err := c.Open(envelope)
			require.NoError(t, err)
			assert.Equal(t, "GET / HTTP/1.1\r\n\r\n", string(plaintext))
		})
	}
}

func TestCrypter_Open_WrongKind(t *testing.T) {
	key := []byte("12345678901234567890123456789012")

	aesgcm, err := encryption.NewAESGCMWithRandomNonceGenerator(key)
	require.NoError(t, err)

	cc20px, err := encryption.NewChaCha20Poly1305WithRandomNonceGenerator(key)
	require.NoError(t, err)

	envelope, err := aesgcm.Seal([]byte("data"))
	require.NoError(t, err)

	_, err = cc20px.Open(envelope)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassette is encrypted with 'aesgcm'")
}

func TestCrypter_Open_WrongKey(t *testing.T) {
	c1, err := encryption.NewAESGCMWithRandomNonceGenerator([]byte("12345678901234567890123456789012"))
	require.NoError(t, err)

	c2, err := encryption.NewAESGCMWithRandomNonceGenerator([]byte("21098765432109876543210987654321"))
	require.NoError(t, err)

	envelope, err := c1.Seal([]byte("data"))
	require.NoError(t, err)

	_, err = c2.Open(envelope)
	assert.Error(t, err)
}

func TestCrypter_Open_Truncated(t *testing.T) {
	c, err := encryption.NewAESGCMWithRandomNonceGenerator([]byte("12345678901234567890123456789012"))
	require.NoError(t, err)

	var envErr *cryptoerr.ErrEnvelope

	_, err = c.Open([]byte("$ENC:V2$"))
	require.Error(t, err)
	require.ErrorAs(t, err, &envErr)
	assert.Equal(t, "cipher kind", envErr.Part())

	_, err = c.Open([]byte("plain"))
	require.Error(t, err)
	require.ErrorAs(t, err, &envErr)
	assert.Equal(t, "header", envErr.Part())
	assert.Equal(t, "crypto: malformed envelope: header", err.Error())
}

func TestNewCrypterForKind_Unknown(t *testing.T) {
	_, err := encryption.NewCrypterForKind("rot13", []byte("12345678901234567890123456789012"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cipher kind")
}
