package sockpuppet

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httputil"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/seborama/sockvcr/cassette/track"
)

// upstream is a lazily established connection to the live network.
type upstream struct {
	conn   net.Conn
	reader *bufio.Reader
}

func (u *upstream) close() {
	if u.conn != nil {
		_ = u.conn.Close()
		u.conn = nil
		u.reader = nil
	}
}

// serve answers the HTTP/1.x requests received on conn until the client hangs
// up, asks to close the connection, the Interceptor is disabled, or a request
// cannot be answered.
func (i *Interceptor) serve(ctx context.Context, conn net.Conn, network, addr, key string) {
	up := &upstream{}

	defer func() {
		up.close()
		_ = conn.Close()
	}()

	br := bufio.NewReader(conn)

	for {
		httpReq, err := http.ReadRequest(br)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				log.Warn().Err(err).Str("addr", addr).Msg("failed to read intercepted request")
			}
			return
		}

		raw, err := httputil.DumpRequest(httpReq, true)
		if err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("failed to capture intercepted request")
			return
		}

		if !i.IsEnabled() {
			log.Debug().Str("addr", addr).Msg("interceptor disabled, closing diverted connection")
			return
		}

		req := track.Request(raw)

		if resp, ok := i.lookup(key, req); ok {
			log.Debug().Str("addr", addr).Str("request", req.RequestLine()).Msg("replaying recorded response")

			if _, err := io.WriteString(conn, string(resp)); err != nil {
				return
			}

			if httpReq.Close {
				return
			}

			continue
		}

		if i.offline {
			log.Warn().Str("addr", addr).Str("request", req.RequestLine()).Msg("no recorded response in offline mode")
			return
		}

		resp, closeAfter, err := i.roundTrip(ctx, up, network, addr, httpReq, raw)
		if err != nil {
			log.Warn().Err(err).Str("addr", addr).Str("request", req.RequestLine()).Msg("live request failed")
			return
		}

		i.record(req, resp)

		log.Debug().Str("addr", addr).Str("request", req.RequestLine()).Str("response", resp.StatusLine()).Msg("live exchange")

		if _, err := io.WriteString(conn, string(resp)); err != nil {
			return
		}

		if httpReq.Close || closeAfter {
			return
		}
	}
}

// roundTrip forwards a raw request to the live network and returns the raw
// response.
func (i *Interceptor) roundTrip(ctx context.Context, up *upstream, network, addr string, httpReq *http.Request, raw []byte) (track.Response, bool, error) {
	if up.conn == nil {
		conn, err := i.dialer.DialContext(ctx, network, addr)
		if err != nil {
			return "", false, errors.Wrap(err, "dial")
		}

		up.conn = conn
		up.reader = bufio.NewReader(conn)
	}

	if _, err := up.conn.Write(raw); err != nil {
		up.close()
		return "", false, errors.Wrap(err, "write request")
	}

	httpResp, err := http.ReadResponse(up.reader, httpReq)
	if err != nil {
		up.close()
		return "", false, errors.Wrap(err, "read response")
	}

	rawResp, err := httputil.DumpResponse(httpResp, true)
	_ = httpResp.Body.Close()
	if err != nil {
		up.close()
		return "", false, errors.Wrap(err, "capture response")
	}

	if httpResp.Close {
		up.close()
	}

	return track.Response(rawResp), httpResp.Close, nil
}
