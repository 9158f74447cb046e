package sockvcr

import (
	"github.com/seborama/sockvcr/cassette"
	"github.com/seborama/sockvcr/sockpuppet"
)

// NewVCR creates a new VCR and loads a cassette.
// A cassette that does not exist or cannot be read is started empty.
func NewVCR(cassetteName string, settings ...Setting) *ControlPanel {
	var vcrSettings VCRSettings

	for _, option := range settings {
		option(&vcrSettings)
	}

	icp := sockpuppet.New(vcrSettings.interceptorOptions()...)

	return &ControlPanel{
		cassette:    cassette.LoadCassette(cassetteName, vcrSettings.cassetteOptions()...),
		interceptor: icp,
		client:      icp.HTTPClient(),
	}
}
