// Package sockpuppet diverts outbound TCP connections to registered cassettes.
//
// An Interceptor plugs in at dial time: its DialContext hands out in-memory
// connections whose requests are answered from the cassettes registered for
// the destination host and port, or from the live network when none of them
// holds a recording.
package sockpuppet

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/seborama/sockvcr/cassette"
	"github.com/seborama/sockvcr/cassette/track"
)

// Option defines an optional functional parameter as received by New().
type Option func(*Interceptor)

// WithOfflineMode makes the Interceptor refuse requests that no registered
// cassette can answer, instead of passing them to the live network.
// The client sees a transport error.
func WithOfflineMode() Option {
	return func(i *Interceptor) {
		i.offline = true
	}
}

// WithReadOnlyMode makes the Interceptor pass unanswered requests to the live
// network without recording the exchange.
func WithReadOnlyMode() Option {
	return func(i *Interceptor) {
		i.readOnly = true
	}
}

// WithDialer sets the dialer used to reach the live network.
func WithDialer(dialer *net.Dialer) Option {
	return func(i *Interceptor) {
		i.dialer = dialer
	}
}

// Interceptor diverts outbound TCP connections to registered cassettes.
// It implements cassette.Interceptor.
type Interceptor struct {
	mu      sync.Mutex
	entries map[string][]cassette.Entry
	records []track.Track
	enabled bool

	// conns holds the server ends of the diverted connections still being served.
	conns map[net.Conn]struct{}

	offline  bool
	readOnly bool
	dialer   *net.Dialer
}

// New creates a new, disabled, Interceptor.
func New(opts ...Option) *Interceptor {
	i := &Interceptor{
		entries: map[string][]cassette.Entry{},
		conns:   map[net.Conn]struct{}{},
		dialer: &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

func registryKey(host string, port int) string {
	return host + ":" + strconv.Itoa(port)
}

// Register routes traffic for host:port to entry.
// Entries registered for the same host:port are consulted in registration order.
func (i *Interceptor) Register(entry cassette.Entry, host string, port int) {
	key := registryKey(host, port)

	i.mu.Lock()
	defer i.mu.Unlock()

	for _, e := range i.entries[key] {
		if e == entry {
			return
		}
	}

	i.entries[key] = append(i.entries[key], entry)

	log.Debug().Str("addr", key).Msg("entry registered")
}

// Enable starts diverting connections made with DialContext.
func (i *Interceptor) Enable() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.enabled = true
}

// Disable stops diverting connections. Connections already diverted are
// closed: clients holding them in an idle pool dial again, for real.
func (i *Interceptor) Disable() {
	i.mu.Lock()
	i.enabled = false
	conns := i.conns
	i.conns = map[net.Conn]struct{}{}
	i.mu.Unlock()

	for conn := range conns {
		_ = conn.Close()
	}

	if len(conns) > 0 {
		log.Debug().Int("connections", len(conns)).Msg("diverted connections closed")
	}
}

// IsEnabled returns true while connections are diverted.
func (i *Interceptor) IsEnabled() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.enabled
}

// Reset clears the registry and the record of live exchanges.
func (i *Interceptor) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.entries = map[string][]cassette.Entry{}
	i.records = nil
}

// Records returns a copy of the live exchanges observed since the last Reset.
func (i *Interceptor) Records() []track.Track {
	i.mu.Lock()
	defer i.mu.Unlock()

	records := make([]track.Track, 0, len(i.records))
	if err := copier.Copy(&records, &i.records); err != nil {
		// copier only fails on mismatched types, which cannot happen here.
		panic(err)
	}

	return records
}

func (i *Interceptor) record(req track.Request, resp track.Response) {
	if i.readOnly {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.enabled {
		log.Debug().Str("request", req.RequestLine()).Msg("interceptor disabled, exchange not recorded")
		return
	}

	i.records = append(i.records, *track.NewTrack(req, resp))
}

// lookup returns the response of the first entry registered for addr that
// holds a recording of req.
func (i *Interceptor) lookup(addr string, req track.Request) (track.Response, bool) {
	i.mu.Lock()
	entries := append([]cassette.Entry(nil), i.entries[addr]...)
	i.mu.Unlock()

	for _, e := range entries {
		if !e.Contains(req) {
			continue
		}

		resp, err := e.ResponseOf(req)
		if err != nil {
			continue
		}

		e.MarkPlayed(req)

		return resp, true
	}

	return "", false
}

// DialContext connects to the address on the named network.
// While the Interceptor is enabled, TCP connections are diverted to the
// Interceptor. Otherwise, or for other networks, it dials for real.
func (i *Interceptor) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if !i.IsEnabled() || !isTCP(network) {
		return i.dialer.DialContext(ctx, network, addr)
	}

	key, err := canonicalAddr(addr)
	if err != nil {
		return nil, err
	}

	client, server := net.Pipe()

	if !i.track(server) {
		// disabled in the meantime
		_ = client.Close()
		_ = server.Close()
		return i.dialer.DialContext(ctx, network, addr)
	}

	// the upstream connection lives as long as the diverted one, not as long as the dial.
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	go func() {
		defer cancel()
		defer i.untrack(server)

		i.serve(connCtx, server, network, addr, key)
	}()

	return client, nil
}

// track adds conn to the diverted connections, unless the Interceptor is disabled.
func (i *Interceptor) track(conn net.Conn) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.enabled {
		return false
	}

	i.conns[conn] = struct{}{}

	return true
}

func (i *Interceptor) untrack(conn net.Conn) {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.conns, conn)
}

// Diverted returns the number of diverted connections still being served.
func (i *Interceptor) Diverted() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return len(i.conns)
}

// Transport returns an http.Transport that dials through the Interceptor.
// TLS connections are not diverted: they are dialled for real.
func (i *Interceptor) Transport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()

	// a proxy would hide the real destination from the Interceptor.
	t.Proxy = nil
	t.DialContext = i.DialContext
	t.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &tls.Dialer{NetDialer: i.dialer}
		return d.DialContext(ctx, network, addr)
	}

	return t
}

// HTTPClient returns an http.Client that dials through the Interceptor.
func (i *Interceptor) HTTPClient() *http.Client {
	return &http.Client{Transport: i.Transport()}
}

func isTCP(network string) bool {
	switch network {
	case "tcp", "tcp4", "tcp6":
		return true
	default:
		return false
	}
}

// canonicalAddr returns addr in the form the registry is keyed with.
func canonicalAddr(addr string) (string, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", &net.AddrError{Err: "invalid port", Addr: addr}
	}

	return registryKey(host, port), nil
}
