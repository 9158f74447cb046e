package encryption

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
)

// nonceSampleSize is the number of nonces drawn to sanity check a generator.
const nonceSampleSize = 32

// RandomNonceGenerator is a random generator of nonce of the specified size.
type RandomNonceGenerator struct {
	size int
}

// NewRandomNonceGenerator creates a new initialised RandomNonceGenerator of specified size.
func NewRandomNonceGenerator(size int) *RandomNonceGenerator {
	return &RandomNonceGenerator{
		size: size,
	}
}

// Generate a random nonce.
// For a 12-byte nonce, never use more than 2^32 random nonces with a given key
// because of the risk of a repeat.
func (ng RandomNonceGenerator) Generate() ([]byte, error) {
	nonce := make([]byte, ng.size)

	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.WithStack(err)
	}

	return nonce, nil
}

// validateNonceGenerator draws a sample of nonces and rejects generators that
// fail, produce nonces of the wrong size or repeat themselves.
func validateNonceGenerator(ng NonceGenerator, size int) error {
	seen := map[string]struct{}{}

	for i := 0; i < nonceSampleSize; i++ {
		nonce, err := ng.Generate()
		if err != nil {
			return errors.Wrap(err, "nonceGenerator failure")
		}

		if len(nonce) != size {
			return errors.Errorf("nonceGenerator produced a nonce of %d bytes, expected %d", len(nonce), size)
		}

		seen[string(nonce)] = struct{}{}
	}

	if len(seen) < nonceSampleSize {
		return errors.New("nonceGenerator produces frequent duplicates")
	}

	return nil
}
