package sockpuppet

import "github.com/seborama/sockvcr/cassette/track"

func Lookup(i *Interceptor, addr string, req track.Request) (track.Response, bool) {
	return i.lookup(addr, req)
}
