package cassette

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	k7err "github.com/seborama/sockvcr/cassette/errors"
	"github.com/seborama/sockvcr/cassette/track"
)

// Entry is what an Interceptor consults to serve an intercepted request.
// *Cassette is an Entry.
type Entry interface {
	Contains(req track.Request) bool
	ResponseOf(req track.Request) (track.Response, error)
	MarkPlayed(req track.Request)
}

// Interceptor diverts outbound socket traffic to registered entries.
type Interceptor interface {
	// Register routes traffic for host:port to entry.
	Register(entry Entry, host string, port int)
	// Enable starts diverting traffic.
	Enable()
	// Disable stops diverting traffic.
	Disable()
	// Reset clears the registry and the record of observed exchanges.
	Reset()
	// Records returns the exchanges observed on the live network since the last Reset.
	Records() []track.Track
}

// IsActive returns true while the cassette is open.
func (k7 *Cassette) IsActive() bool {
	k7.mu.RLock()
	defer k7.mu.RUnlock()

	return k7.icp != nil
}

// Open registers every request on the cassette with the interceptor, under the
// host and port the request is destined to, and enables interception.
//
// A cassette can only be open once at a time.
func (k7 *Cassette) Open(icp Interceptor) (*Cassette, error) {
	if icp == nil {
		return nil, k7err.NewErrScope("cannot open cassette '" + k7.name + "' without an interceptor")
	}

	k7.mu.Lock()
	if k7.icp != nil {
		k7.mu.Unlock()
		return nil, k7err.NewErrScope("cassette '" + k7.name + "' is already open")
	}
	k7.icp = icp
	k7.mu.Unlock()

	for _, req := range k7.Requests() {
		host, port := req.HostAndPort()
		icp.Register(k7, host, port)
	}

	icp.Enable()

	log.Debug().Str("cassette", k7.name).Int("tracks", k7.Len()).Msg("cassette open")

	return k7, nil
}

// Close absorbs the exchanges recorded by the interceptor, saves the cassette
// and then disables and resets the interceptor.
// The interceptor is disabled and reset even when saving fails.
func (k7 *Cassette) Close() (err error) {
	k7.mu.Lock()
	icp := k7.icp
	k7.icp = nil
	k7.mu.Unlock()

	if icp == nil {
		return k7err.NewErrScope("cassette '" + k7.name + "' is not open")
	}

	defer func() {
		icp.Disable()
		icp.Reset()

		log.Debug().Str("cassette", k7.name).Err(err).Msg("cassette closed")
	}()

	records := icp.Records()
	for i := range records {
		k7.Append(records[i].Request, records[i].Response)
	}

	if err = k7.Save(); err != nil {
		return errors.Wrap(err, "failed to save cassette '"+k7.name+"'")
	}

	return nil
}

// Use opens the cassette, runs fn and closes the cassette.
// The cassette is closed however fn returns, panics included.
// Errors from fn and from Close are both reported.
func (k7 *Cassette) Use(icp Interceptor, fn func(*Cassette) error) (err error) {
	if _, err = k7.Open(icp); err != nil {
		return err
	}

	defer func() {
		r := recover()

		if closeErr := k7.Close(); closeErr != nil {
			err = stderrors.Join(err, closeErr)
		}

		if r != nil {
			panic(r)
		}
	}()

	return fn(k7)
}
