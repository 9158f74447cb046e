package track

import (
	"strings"

	"github.com/google/uuid"
)

// Request is a raw HTTP/1.x request, as seen on the wire.
// Two requests are the same request when their bytes are equal.
type Request string

// Response is a raw HTTP/1.x response, as seen on the wire.
type Response string

// RequestLine returns the first line of the request, e.g. "GET /foo HTTP/1.1".
func (r Request) RequestLine() string {
	line, _, _ := strings.Cut(string(r), "\r\n")
	return line
}

// HostAndPort returns the host and port the request is destined to, as
// advertised by its Host header.
func (r Request) HostAndPort() (string, int) {
	return HostAndPort(string(r))
}

// StatusLine returns the first line of the response, e.g. "HTTP/1.1 200 OK".
func (r Response) StatusLine() string {
	line, _, _ := strings.Cut(string(r), "\r\n")
	return line
}

// Track is a recording (Request + Response) in a cassette.
type Track struct {
	Request  Request  `json:"Request" yaml:"request"`
	Response Response `json:"Response" yaml:"response"`

	// UUID identifies the track on the cassette. It is informational only and
	// does not take part in request matching.
	UUID string `json:"UUID" yaml:"uuid"`
}

// NewTrack creates a new Track.
func NewTrack(req Request, resp Response) *Track {
	return &Track{
		Request:  req,
		Response: resp,
		UUID:     uuid.New().String(),
	}
}
