package encryption

import (
	"bytes"
	"crypto/cipher"

	"github.com/pkg/errors"

	cryptoerr "github.com/seborama/sockvcr/encryption/errors"
)

// envelopeHeader marks the start of an encrypted cassette.
//
// Layout: header | kind length (1 byte) | kind | nonce length (1 byte) | nonce | ciphertext
const envelopeHeader = "$ENC:V2$"

// Supported cipher kinds.
const (
	KindAESGCM           = "aesgcm"
	KindChaCha20Poly1305 = "chacha20poly1305"
)

// Crypter contains the AEAD cipher to use for encryption and decryption.
type Crypter struct {
	aead           cipher.AEAD
	nonceGenerator NonceGenerator
	kind           string
}

// NonceGenerator defines the behaviour of a Nonce Generator type.
type NonceGenerator interface {
	Generate() ([]byte, error)
}

// NewCrypter creates a new initialised Crypter.
func NewCrypter(aead cipher.AEAD, kind string, nonceGenerator NonceGenerator) *Crypter {
	return &Crypter{
		aead:           aead,
		kind:           kind,
		nonceGenerator: nonceGenerator,
	}
}

// NewCrypterForKind creates a Crypter of the named kind with a random nonce generator.
func NewCrypterForKind(kind string, key []byte) (*Crypter, error) {
	switch kind {
	case KindAESGCM:
		return NewAESGCMWithRandomNonceGenerator(key)
	case KindChaCha20Poly1305:
		return NewChaCha20Poly1305WithRandomNonceGenerator(key)
	default:
		return nil, cryptoerr.NewErrCrypto("unknown cipher kind: '" + kind + "'")
	}
}

// Kind returns the name of the cipher.
func (c Crypter) Kind() string {
	return c.kind
}

// Encrypt performs the encryption of the provided plaintext with the key
// associated with this Crypter and a nonce from c.nonceGenerator.
func (c Crypter) Encrypt(plaintext []byte) (ciphertext, nonce []byte, err error) {
	nonce, err = c.nonceGenerator.Generate()
	if err != nil {
		return nil, nil, errors.Wrap(err, "nonce")
	}

	ciphertext = c.aead.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// Decrypt performs the decryption of the provided ciphertext with the key
// associated with this Crypter and the supplied nonce. This must be the same
// nonce that was used to encrypt the ciphertext.
func (c Crypter) Decrypt(ciphertext, nonce []byte) ([]byte, error) {
	text, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return text, nil
}

// Seal encrypts plaintext and wraps it in a self-describing envelope that
// Open understands.
func (c Crypter) Seal(plaintext []byte) ([]byte, error) {
	ciphertext, nonce, err := c.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer

	out.WriteString(envelopeHeader)
	out.WriteByte(byte(len(c.kind)))
	out.WriteString(c.kind)
	out.WriteByte(byte(len(nonce)))
	out.Write(nonce)
	out.Write(ciphertext)

	return out.Bytes(), nil
}

// Open decrypts an envelope produced by Seal.
func (c Crypter) Open(envelope []byte) ([]byte, error) {
	kind, nonce, ciphertext, err := parseEnvelope(envelope)
	if err != nil {
		return nil, err
	}

	if kind != c.kind {
		return nil, cryptoerr.NewErrCrypto("cassette is encrypted with '" + kind + "', not '" + c.kind + "'")
	}

	return c.Decrypt(ciphertext, nonce)
}

// IsEncrypted returns true when data is an envelope produced by Seal.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(envelopeHeader))
}

// EnvelopeKind returns the cipher kind recorded in an envelope.
func EnvelopeKind(envelope []byte) (string, error) {
	kind, _, _, err := parseEnvelope(envelope)
	return kind, err
}

func parseEnvelope(envelope []byte) (kind string, nonce, ciphertext []byte, err error) {
	if !IsEncrypted(envelope) {
		return "", nil, nil, cryptoerr.NewErrEnvelope("header")
	}

	rest := envelope[len(envelopeHeader):]

	kindBytes, rest, ok := readChunk(rest)
	if !ok {
		return "", nil, nil, cryptoerr.NewErrEnvelope("cipher kind")
	}

	nonce, ciphertext, ok = readChunk(rest)
	if !ok {
		return "", nil, nil, cryptoerr.NewErrEnvelope("nonce")
	}

	return string(kindBytes), nonce, ciphertext, nil
}

// readChunk reads a length-prefixed chunk and returns it with the remaining data.
func readChunk(data []byte) (chunk, rest []byte, ok bool) {
	if len(data) < 1 {
		return nil, nil, false
	}

	n := int(data[0])
	if len(data) < 1+n {
		return nil, nil, false
	}

	return data[1 : 1+n], data[1+n:], true
}
