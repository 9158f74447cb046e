package encryption

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"

	cryptoerr "github.com/seborama/sockvcr/encryption/errors"
)

// NewAESGCMWithRandomNonceGenerator creates a new Crypter initialised with an
// AES-GCM cipher from the supplied key and a random nonce generator.
func NewAESGCMWithRandomNonceGenerator(key []byte) (*Crypter, error) {
	return NewAESGCM(key, nil)
}

// NewAESGCM creates a new Crypter initialised with an AES-GCM cipher from the
// supplied key.
// The key is sensitive, never share it openly.
//
// The key should be 16 bytes (AES-128) or 32 bytes (AES-256) long.
func NewAESGCM(key []byte, nonceGenerator NonceGenerator) (*Crypter, error) {
	if len(key) != 16 && len(key) != 32 {
		return nil, cryptoerr.NewErrCrypto("key size is not 16 or 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if nonceGenerator == nil {
		nonceGenerator = NewRandomNonceGenerator(aesgcm.NonceSize())
	}

	if err = validateNonceGenerator(nonceGenerator, aesgcm.NonceSize()); err != nil {
		return nil, errors.Wrap(err, "nonce generator is not valid")
	}

	return NewCrypter(aesgcm, KindAESGCM, nonceGenerator), nil
}
