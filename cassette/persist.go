package cassette

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/seborama/sockvcr/cassette/track"
	"github.com/seborama/sockvcr/compression"
	"github.com/seborama/sockvcr/encryption"
)

// FileIO is the storage backend of a cassette.
type FileIO interface {
	MkdirAll(path string, perm os.FileMode) error
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	NotExist(name string) (bool, error)
}

// Crypter seals and opens encrypted cassette content.
type Crypter interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(envelope []byte) ([]byte, error)
}

// document is the persisted form of a cassette. Play counts are not persisted.
type document struct {
	Tracks []persistedTrack `json:"Tracks" yaml:"tracks"`
}

type persistedTrack struct {
	Request  payload `json:"Request" yaml:"request"`
	Response payload `json:"Response" yaml:"response"`
	UUID     string  `json:"UUID" yaml:"uuid"`
}

// b64Prefix marks a payload that is not valid UTF-8 and was base64 encoded.
const b64Prefix = "b64:"

// payload is a raw message as persisted.
// Text is stored as is so that cassettes remain readable.
type payload []byte

// MarshalText implements encoding.TextMarshaler.
func (p payload) MarshalText() ([]byte, error) {
	if utf8.Valid(p) && !bytes.HasPrefix(p, []byte(b64Prefix)) {
		return p, nil
	}

	out := make([]byte, len(b64Prefix)+base64.StdEncoding.EncodedLen(len(p)))
	copy(out, b64Prefix)
	base64.StdEncoding.Encode(out[len(b64Prefix):], p)

	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *payload) UnmarshalText(text []byte) error {
	if !bytes.HasPrefix(text, []byte(b64Prefix)) {
		*p = append((*p)[:0], text...)
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(string(text[len(b64Prefix):]))
	if err != nil {
		return errors.Wrap(err, "base64 payload")
	}

	*p = data

	return nil
}

// Save writes the cassette to its store, replacing any previous content.
func (k7 *Cassette) Save() error {
	data, err := k7.encode(k7.Tracks())
	if err != nil {
		return err
	}

	if err := k7.store.MkdirAll(filepath.Dir(k7.name), 0o750); err != nil {
		return errors.Wrap(err, "cassette directory")
	}

	if err := k7.store.WriteFile(k7.name, data, 0o640); err != nil {
		return errors.Wrap(err, "failed to write cassette")
	}

	log.Debug().Str("cassette", k7.name).Int("tracks", k7.Len()).Msg("cassette saved")

	return nil
}

// encode marshals, compresses and encrypts the tracks, as configured.
func (k7 *Cassette) encode(tracks []track.Track) ([]byte, error) {
	doc := document{Tracks: make([]persistedTrack, len(tracks))}
	for i, t := range tracks {
		doc.Tracks[i] = persistedTrack{
			Request:  payload(t.Request),
			Response: payload(t.Response),
			UUID:     t.UUID,
		}
	}

	var (
		data []byte
		err  error
	)

	if k7.isYAML() {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal cassette")
	}

	if data, err = k7.GzipFilter(data); err != nil {
		return nil, err
	}

	if k7.crypter != nil {
		if data, err = k7.crypter.Seal(data); err != nil {
			return nil, errors.Wrap(err, "failed to encrypt cassette")
		}
	}

	return data, nil
}

// readTracks reads the cassette tracks from the store.
func (k7 *Cassette) readTracks() ([]track.Track, error) {
	data, err := k7.readPlain()
	if err != nil {
		return nil, err
	}

	var doc document

	if k7.isYAML() {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to interpret cassette data")
	}

	tracks := make([]track.Track, len(doc.Tracks))
	for i, pt := range doc.Tracks {
		tracks[i] = track.Track{
			Request:  track.Request(pt.Request),
			Response: track.Response(pt.Response),
			UUID:     pt.UUID,
		}
	}

	return tracks, nil
}

// readPlain reads the cassette data from the store, decrypted and decompressed.
func (k7 *Cassette) readPlain() ([]byte, error) {
	data, err := k7.store.ReadFile(k7.name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cassette data")
	}

	if encryption.IsEncrypted(data) {
		if k7.crypter == nil {
			return nil, errors.New("cassette is encrypted but no crypter was supplied")
		}

		if data, err = k7.crypter.Open(data); err != nil {
			return nil, errors.Wrap(err, "failed to decrypt cassette")
		}
	}

	return k7.GunzipFilter(data)
}

// GzipFilter compresses the cassette data in gzip format if the cassette
// name ends with '.gz', otherwise data is left as is.
func (k7 *Cassette) GzipFilter(data []byte) ([]byte, error) {
	if k7.IsLongPlay() {
		return compression.Compress(data)
	}

	return data, nil
}

// GunzipFilter de-compresses the cassette data in gzip format if the cassette
// name ends with '.gz', otherwise data is left as is.
func (k7 *Cassette) GunzipFilter(data []byte) ([]byte, error) {
	if k7.IsLongPlay() {
		return compression.Decompress(data)
	}

	return data, nil
}

func (k7 *Cassette) isYAML() bool {
	name := strings.TrimSuffix(k7.name, ".gz")
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// DumpCassette returns the plain (decrypted, de-compressed) content of a cassette.
func DumpCassette(name string, opts ...Option) ([]byte, error) {
	return NewCassette(name, opts...).readPlain()
}

// ReadRaw returns the content of a cassette as held in its store.
func ReadRaw(name string, opts ...Option) ([]byte, error) {
	k7 := NewCassette(name, opts...)

	data, err := k7.store.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cassette data")
	}

	return data, nil
}

// DeleteCassette removes the cassette file from the local filesystem.
func DeleteCassette(name string) error {
	err := os.Remove(name)
	if os.IsNotExist(err) {
		// the file does not exist so this is not an error since we wanted it gone!
		return nil
	}

	return errors.WithStack(err)
}
