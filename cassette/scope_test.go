package cassette_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seborama/sockvcr/cassette"
	k7err "github.com/seborama/sockvcr/cassette/errors"
	"github.com/seborama/sockvcr/cassette/track"
	"github.com/seborama/sockvcr/fileio"
)

type registration struct {
	entry cassette.Entry
	host  string
	port  int
}

// interceptorMock records the calls it receives.
type interceptorMock struct {
	registrations []registration
	records       []track.Track
	calls         []string
	enabled       bool
}

func (i *interceptorMock) Register(entry cassette.Entry, host string, port int) {
	i.calls = append(i.calls, "register")
	i.registrations = append(i.registrations, registration{entry: entry, host: host, port: port})
}

func (i *interceptorMock) Enable() {
	i.calls = append(i.calls, "enable")
	i.enabled = true
}

func (i *interceptorMock) Disable() {
	i.calls = append(i.calls, "disable")
	i.enabled = false
}

func (i *interceptorMock) Reset() {
	i.calls = append(i.calls, "reset")
	i.registrations = nil
	i.records = nil
}

func (i *interceptorMock) Records() []track.Track {
	i.calls = append(i.calls, "records")
	return i.records
}

// brokenStore fails every write.
type brokenStore struct {
	fileio.OSFile
}

func (*brokenStore) WriteFile(_ string, _ []byte, _ os.FileMode) error {
	return errors.New("disk on fire")
}

func TestCassette_Open_RegistersKnownRequests(t *testing.T) {
	k7 := cassette.NewCassette(filepath.Join(t.TempDir(), "open.cassette"))
	k7.Append(req1, resp1)
	k7.Append(req2, resp2)
	k7.Append(req3, resp3)

	icp := &interceptorMock{}

	got, err := k7.Open(icp)
	require.NoError(t, err)
	assert.Same(t, k7, got)
	assert.True(t, k7.IsActive())
	assert.True(t, icp.enabled)

	require.Len(t, icp.registrations, 3)
	assert.Equal(t, registration{entry: k7, host: "example.com", port: 8443}, icp.registrations[0])
	assert.Equal(t, registration{entry: k7, host: "example.org", port: 80}, icp.registrations[1])
	assert.Equal(t, registration{entry: k7, host: ":", port: 80}, icp.registrations[2])

	assert.Equal(t, []string{"register", "register", "register", "enable"}, icp.calls)
}

func TestCassette_Open_Twice(t *testing.T) {
	k7 := cassette.NewCassette(filepath.Join(t.TempDir(), "twice.cassette"))
	icp := &interceptorMock{}

	_, err := k7.Open(icp)
	require.NoError(t, err)

	other := &interceptorMock{}
	_, err = k7.Open(other)
	require.Error(t, err)

	var scopeErr *k7err.ErrScope
	assert.True(t, errors.As(err, &scopeErr))
	assert.Empty(t, other.calls)
}

func TestCassette_Open_NilInterceptor(t *testing.T) {
	k7 := cassette.NewCassette("unused")

	_, err := k7.Open(nil)
	require.Error(t, err)
	assert.False(t, k7.IsActive())
}

func TestCassette_Close_NotOpen(t *testing.T) {
	k7 := cassette.NewCassette("unused")

	err := k7.Close()
	require.Error(t, err)

	var scopeErr *k7err.ErrScope
	assert.True(t, errors.As(err, &scopeErr))
}

func TestCassette_Close_AbsorbsRecordsAndSaves(t *testing.T) {
	name := filepath.Join(t.TempDir(), "close.cassette")

	k7 := cassette.NewCassette(name)
	k7.Append(req1, resp1)

	icp := &interceptorMock{}
	_, err := k7.Open(icp)
	require.NoError(t, err)

	k7.MarkPlayed(req1)
	icp.records = []track.Track{
		*track.NewTrack(req2, resp2),
		*track.NewTrack(req1, resp3),
	}

	require.NoError(t, k7.Close())
	assert.False(t, k7.IsActive())
	assert.False(t, icp.enabled)
	assert.Nil(t, icp.registrations)
	assert.Equal(t, []string{"register", "enable", "records", "disable", "reset"}, icp.calls)

	// in-memory state reflects what was saved
	assert.Equal(t, []track.Request{req1, req2}, k7.Requests())
	assert.Equal(t, []track.Response{resp3, resp2}, k7.Responses())
	assert.Equal(t, 1, k7.PlayCount())

	k8 := cassette.LoadCassette(name)
	assert.Equal(t, k7.Requests(), k8.Requests())
	assert.Equal(t, k7.Responses(), k8.Responses())

	// the cassette can be opened again once closed
	_, err = k7.Open(icp)
	require.NoError(t, err)
	require.NoError(t, k7.Close())
}

func TestCassette_Close_SaveFailureStillTearsDown(t *testing.T) {
	k7 := cassette.NewCassette(filepath.Join(t.TempDir(), "broken.cassette"), cassette.WithStore(&brokenStore{}))
	icp := &interceptorMock{}

	_, err := k7.Open(icp)
	require.NoError(t, err)

	err = k7.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	assert.False(t, icp.enabled)
	assert.Equal(t, []string{"enable", "records", "disable", "reset"}, icp.calls)
	assert.False(t, k7.IsActive())
}

func TestCassette_Use(t *testing.T) {
	name := filepath.Join(t.TempDir(), "use.cassette")
	icp := &interceptorMock{}

	k7 := cassette.LoadCassette(name)

	err := k7.Use(icp, func(k7 *cassette.Cassette) error {
		assert.True(t, icp.enabled)
		assert.True(t, k7.IsActive())
		icp.records = []track.Track{*track.NewTrack(req1, resp1)}
		return nil
	})
	require.NoError(t, err)
	assert.False(t, icp.enabled)

	assert.Equal(t, 1, cassette.LoadCassette(name).Len())
}

func TestCassette_Use_BodyFails(t *testing.T) {
	name := filepath.Join(t.TempDir(), "use-fails.cassette")
	icp := &interceptorMock{}

	k7 := cassette.NewCassette(name)

	bodyErr := errors.New("synthetic failure")

	err := k7.Use(icp, func(*cassette.Cassette) error {
		icp.records = []track.Track{*track.NewTrack(req1, resp1)}
		return bodyErr
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, bodyErr))

	assert.False(t, icp.enabled)
	assert.False(t, k7.IsActive())

	_, statErr := os.Stat(name)
	require.NoError(t, statErr)
	assert.Equal(t, 1, cassette.LoadCassette(name).Len())
}

func TestCassette_Use_BodyAndSaveFail(t *testing.T) {
	k7 := cassette.NewCassette(filepath.Join(t.TempDir(), "both.cassette"), cassette.WithStore(&brokenStore{}))
	icp := &interceptorMock{}

	bodyErr := errors.New("synthetic failure")

	err := k7.Use(icp, func(*cassette.Cassette) error {
		return bodyErr
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, bodyErr))
	assert.Contains(t, err.Error(), "disk on fire")
	assert.False(t, icp.enabled)
}

func TestCassette_Use_BodyPanics(t *testing.T) {
	name := filepath.Join(t.TempDir(), "use-panics.cassette")
	icp := &interceptorMock{}

	k7 := cassette.NewCassette(name)

	assert.PanicsWithValue(t, "synthetic panic", func() {
		_ = k7.Use(icp, func(*cassette.Cassette) error {
			icp.records = []track.Track{*track.NewTrack(req2, resp2)}
			panic("synthetic panic")
		})
	})

	assert.False(t, icp.enabled)
	assert.False(t, k7.IsActive())
	assert.Equal(t, []track.Request{req2}, cassette.LoadCassette(name).Requests())
}

func TestCassette_Use_OpenFails(t *testing.T) {
	k7 := cassette.NewCassette("unused")
	called := false

	err := k7.Use(nil, func(*cassette.Cassette) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
}
