package track

import (
	"bufio"
	"net/textproto"
	"strconv"
	"strings"
)

const defaultPort = 80

// noHost is what the Host header is taken to be when the request carries none.
// It is not a valid host: it yields (":", 80) which matches nothing real.
const noHost = ":"

// HostAndPort extracts the host and port from the Host header of a raw
// HTTP request.
//
// The first line of raw is the request line, followed by a header block
// terminated by a blank line. "Host: example.com:8443" yields
// ("example.com", 8443). A Host header without a port, or with a port that
// is not a number, yields (header value, 80). A missing Host header yields
// (":", 80).
func HostAndPort(raw string) (host string, port int) {
	hostHeader := noHost

	if _, headers, found := strings.Cut(raw, "\r\n"); found {
		tp := textproto.NewReader(bufio.NewReader(strings.NewReader(headers)))

		// headers read before a malformed line are still usable.
		mimeHeader, _ := tp.ReadMIMEHeader()
		if values := mimeHeader["Host"]; len(values) > 0 {
			hostHeader = values[0]
		}
	}

	h, p, found := strings.Cut(hostHeader, ":")
	if !found {
		return hostHeader, defaultPort
	}

	port, err := strconv.Atoi(strings.TrimSpace(p))
	if err != nil {
		return hostHeader, defaultPort
	}

	return h, port
}
