package sockvcr

import (
	"net"
	"os"

	"github.com/seborama/sockvcr/cassette"
	"github.com/seborama/sockvcr/encryption"
	"github.com/seborama/sockvcr/sockpuppet"
)

// Setting defines an optional functional parameter as received by NewVCR().
type Setting func(vcrSettings *VCRSettings)

// WithCassetteCrypto creates an AES-GCM cassette cryptographer with the specified key file.
func WithCassetteCrypto(keyFile string) Setting {
	return withCassetteCrypter(keyFile, encryption.NewAESGCMWithRandomNonceGenerator)
}

// WithCassetteCryptoChaCha creates an XChaCha20-Poly1305 cassette cryptographer with the
// specified key file.
func WithCassetteCryptoChaCha(keyFile string) Setting {
	return withCassetteCrypter(keyFile, encryption.NewChaCha20Poly1305WithRandomNonceGenerator)
}

func withCassetteCrypter(keyFile string, newCrypter func([]byte) (*encryption.Crypter, error)) Setting {
	return func(vcrSettings *VCRSettings) {
		key, err := os.ReadFile(keyFile)
		if err != nil {
			panic(err)
		}

		crypter, err := newCrypter(key)
		if err != nil {
			panic(err)
		}

		vcrSettings.crypter = crypter
	}
}

// WithCassetteStore sets the storage backend of the cassette.
// The default is the local filesystem.
func WithCassetteStore(store cassette.FileIO) Setting {
	return func(vcrSettings *VCRSettings) {
		vcrSettings.store = store
	}
}

// WithReadOnlyMode sets the VCR to replay tracks from cassette, if present, or make live
// calls but do not records new tracks.
func WithReadOnlyMode() Setting {
	return func(vcrSettings *VCRSettings) {
		vcrSettings.readOnly = true
	}
}

// WithOfflineMode sets the VCR to replay tracks from cassette, if present, but do not make
// live calls.
// The client gets a transport error if no track was found.
func WithOfflineMode() Setting {
	return func(vcrSettings *VCRSettings) {
		vcrSettings.offline = true
	}
}

// WithDialer sets the dialer used for live calls.
func WithDialer(dialer *net.Dialer) Setting {
	return func(vcrSettings *VCRSettings) {
		vcrSettings.dialer = dialer
	}
}

// VCRSettings holds a set of options for the VCR.
type VCRSettings struct {
	crypter  cassette.Crypter
	store    cassette.FileIO
	dialer   *net.Dialer
	offline  bool
	readOnly bool
}

func (vcrSettings *VCRSettings) cassetteOptions() []cassette.Option {
	var k7Opts []cassette.Option

	if vcrSettings.crypter != nil {
		k7Opts = append(k7Opts, cassette.WithCrypter(vcrSettings.crypter))
	}

	if vcrSettings.store != nil {
		k7Opts = append(k7Opts, cassette.WithStore(vcrSettings.store))
	}

	return k7Opts
}

func (vcrSettings *VCRSettings) interceptorOptions() []sockpuppet.Option {
	var icpOpts []sockpuppet.Option

	if vcrSettings.offline {
		icpOpts = append(icpOpts, sockpuppet.WithOfflineMode())
	}

	if vcrSettings.readOnly {
		icpOpts = append(icpOpts, sockpuppet.WithReadOnlyMode())
	}

	if vcrSettings.dialer != nil {
		icpOpts = append(icpOpts, sockpuppet.WithDialer(vcrSettings.dialer))
	}

	return icpOpts
}
