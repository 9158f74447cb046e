package cassette

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	k7err "github.com/seborama/sockvcr/cassette/errors"
	"github.com/seborama/sockvcr/cassette/track"
	"github.com/seborama/sockvcr/fileio"
	"github.com/seborama/sockvcr/stats"
)

// Cassette contains a set of tracks, keyed by request and kept in the order
// they were first added.
type Cassette struct {
	name string

	mu         sync.RWMutex
	tracks     []track.Track
	index      map[track.Request]int
	playCounts map[track.Request]int

	tracksLoaded int

	store   FileIO
	crypter Crypter

	// icp is the interceptor the cassette is registered with while it is active.
	icp Interceptor
}

// Option defines a signature for options that can be passed
// to create a new Cassette.
type Option func(*Cassette)

// WithStore sets the storage backend of the cassette.
// The default is the local filesystem.
func WithStore(store FileIO) Option {
	return func(k7 *Cassette) {
		k7.store = store
	}
}

// WithCrypter enables cassette encryption with the supplied crypter.
func WithCrypter(crypter Crypter) Option {
	return func(k7 *Cassette) {
		k7.crypter = crypter
	}
}

// NewCassette creates a ready to use, empty cassette.
func NewCassette(name string, opts ...Option) *Cassette {
	k7 := &Cassette{
		name:       name,
		index:      map[track.Request]int{},
		playCounts: map[track.Request]int{},
		store:      &fileio.OSFile{},
	}

	for _, opt := range opts {
		opt(k7)
	}

	return k7
}

// LoadCassette loads a cassette from its store.
// A cassette that cannot be loaded, for whatever reason, yields an empty
// cassette: a missing cassette is simply one that hasn't been recorded yet.
func LoadCassette(name string, opts ...Option) *Cassette {
	k7 := NewCassette(name, opts...)

	tracks, err := k7.readTracks()
	if err != nil {
		if notExist, _ := k7.store.NotExist(name); notExist {
			log.Debug().Str("cassette", name).Msg("no cassette found, starting empty")
		} else {
			log.Warn().Err(err).Str("cassette", name).Msg("failed to load cassette, starting empty")
		}

		return k7
	}

	for i := range tracks {
		k7.upsert(tracks[i])
	}

	k7.tracksLoaded = len(k7.tracks)

	log.Debug().Str("cassette", name).Int("tracks", k7.tracksLoaded).Msg("cassette loaded")

	return k7
}

// Name retrieves the cassette name.
func (k7 *Cassette) Name() string {
	return k7.name
}

// IsLongPlay returns true if the cassette content is compressed.
func (k7 *Cassette) IsLongPlay() bool {
	return strings.HasSuffix(k7.name, ".gz")
}

// Len returns the number of distinct requests recorded on the cassette.
func (k7 *Cassette) Len() int {
	if k7 == nil {
		return 0
	}

	k7.mu.RLock()
	defer k7.mu.RUnlock()

	return len(k7.tracks)
}

// Contains returns true if a response is recorded for the request.
func (k7 *Cassette) Contains(req track.Request) bool {
	k7.mu.RLock()
	defer k7.mu.RUnlock()

	_, ok := k7.index[req]

	return ok
}

// Requests returns the recorded requests, in cassette order.
func (k7 *Cassette) Requests() []track.Request {
	k7.mu.RLock()
	defer k7.mu.RUnlock()

	reqs := make([]track.Request, len(k7.tracks))
	for i := range k7.tracks {
		reqs[i] = k7.tracks[i].Request
	}

	return reqs
}

// Responses returns the recorded responses, in cassette order.
func (k7 *Cassette) Responses() []track.Response {
	k7.mu.RLock()
	defer k7.mu.RUnlock()

	resps := make([]track.Response, len(k7.tracks))
	for i := range k7.tracks {
		resps[i] = k7.tracks[i].Response
	}

	return resps
}

// Tracks returns a copy of the tracks, in cassette order.
func (k7 *Cassette) Tracks() []track.Track {
	k7.mu.RLock()
	defer k7.mu.RUnlock()

	tracks := make([]track.Track, 0, len(k7.tracks))
	if err := copier.Copy(&tracks, &k7.tracks); err != nil {
		// copier only fails on mismatched types, which cannot happen here.
		panic(err)
	}

	return tracks
}

// ResponseOf returns the response recorded for the request.
// It returns a *k7err.ErrKeyNotFound when the request was never recorded.
func (k7 *Cassette) ResponseOf(req track.Request) (track.Response, error) {
	k7.mu.RLock()
	defer k7.mu.RUnlock()

	i, ok := k7.index[req]
	if !ok {
		return "", k7err.NewErrKeyNotFound(string(req))
	}

	return k7.tracks[i].Response, nil
}

// GetResponse is an alias of ResponseOf.
func (k7 *Cassette) GetResponse(req track.Request) (track.Response, error) {
	return k7.ResponseOf(req)
}

// Append records a request and its response.
// If the request is already on the cassette, its response is replaced and the
// track keeps its position.
func (k7 *Cassette) Append(req track.Request, resp track.Response) {
	k7.upsert(*track.NewTrack(req, resp))
}

func (k7 *Cassette) upsert(trk track.Track) {
	k7.mu.Lock()
	defer k7.mu.Unlock()

	if i, ok := k7.index[trk.Request]; ok {
		k7.tracks[i].Response = trk.Response
		return
	}

	k7.index[trk.Request] = len(k7.tracks)
	k7.tracks = append(k7.tracks, trk)
}

// MarkPlayed counts one play of the request.
// The request does not need to be on the cassette.
func (k7 *Cassette) MarkPlayed(req track.Request) {
	k7.mu.Lock()
	defer k7.mu.Unlock()

	k7.playCounts[req]++
}

// PlayCountOf returns the number of times the request was played.
func (k7 *Cassette) PlayCountOf(req track.Request) int {
	k7.mu.RLock()
	defer k7.mu.RUnlock()

	return k7.playCounts[req]
}

// PlayCount returns the total number of plays across all requests.
func (k7 *Cassette) PlayCount() int {
	k7.mu.RLock()
	defer k7.mu.RUnlock()

	total := 0
	for _, n := range k7.playCounts {
		total += n
	}

	return total
}

// Stats returns the cassette's Stats.
func (k7 *Cassette) Stats() *stats.Stats {
	if k7 == nil {
		return nil
	}

	total := k7.Len()

	return &stats.Stats{
		TotalTracks:    total,
		TracksLoaded:   k7.tracksLoaded,
		TracksRecorded: total - k7.tracksLoaded,
		TracksPlayed:   k7.PlayCount(),
	}
}

func (k7 *Cassette) String() string {
	return fmt.Sprintf("<Cassette containing %d recorded response(s)>", k7.Len())
}
