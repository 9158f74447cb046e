package sockvcr

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/seborama/sockvcr/cassette"
	vcrerrors "github.com/seborama/sockvcr/errors"
	"github.com/seborama/sockvcr/stats"
)

// ControlPanel holds the parts of a VCR that can be interacted with.
type ControlPanel struct {
	cassette    *cassette.Cassette
	interceptor interceptor
	client      *http.Client
}

type interceptor interface {
	cassette.Interceptor
	IsEnabled() bool
}

// Start opens the cassette: from then on, connections made with HTTPClient()
// are served from the cassette or recorded.
func (controlPanel *ControlPanel) Start() error {
	if controlPanel.cassette.IsActive() {
		return vcrerrors.NewErrSockVCR("VCR is already started")
	}

	_, err := controlPanel.cassette.Open(controlPanel.interceptor)
	return errors.Wrap(err, "start")
}

// Stop closes the cassette, saving the recordings made since Start().
func (controlPanel *ControlPanel) Stop() error {
	if !controlPanel.cassette.IsActive() {
		return vcrerrors.NewErrSockVCR("VCR is not started")
	}

	defer controlPanel.client.CloseIdleConnections()

	return errors.Wrap(controlPanel.cassette.Close(), "stop")
}

// Play runs fn between Start() and Stop(). The cassette is closed even when
// fn fails or panics.
func (controlPanel *ControlPanel) Play(fn func(client *http.Client) error) error {
	if fn == nil {
		return vcrerrors.NewErrSockVCR("nothing to play")
	}

	defer controlPanel.client.CloseIdleConnections()

	return controlPanel.cassette.Use(controlPanel.interceptor, func(*cassette.Cassette) error {
		return fn(controlPanel.client)
	})
}

// IsPlaying returns true between Start() and Stop().
func (controlPanel *ControlPanel) IsPlaying() bool {
	return controlPanel.interceptor.IsEnabled()
}

// HTTPClient returns the http.Client that contains the VCR.
func (controlPanel *ControlPanel) HTTPClient() *http.Client {
	return controlPanel.client
}

// Cassette returns the cassette loaded in the VCR.
func (controlPanel *ControlPanel) Cassette() *cassette.Cassette {
	return controlPanel.cassette
}

// Stats returns Stats about the cassette and VCR session.
func (controlPanel *ControlPanel) Stats() *stats.Stats {
	return controlPanel.cassette.Stats()
}

// NumberOfTracks returns the number of tracks contained in the cassette.
func (controlPanel *ControlPanel) NumberOfTracks() int32 {
	return int32(controlPanel.cassette.Len())
}
