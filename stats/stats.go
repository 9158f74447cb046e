package stats

import "fmt"

// Stats holds information about the cassette and its session.
type Stats struct {
	// TotalTracks is the total number of tracks on the cassette.
	TotalTracks int

	// TracksLoaded is the number of tracks that were loaded from storage.
	TracksLoaded int

	// TracksRecorded is the number of new tracks recorded since the cassette was loaded.
	TracksRecorded int

	// TracksPlayed is the number of times a response was played back from the
	// cassette instead of the network.
	TracksPlayed int
}

func (s Stats) String() string {
	return fmt.Sprintf("total=%d loaded=%d recorded=%d played=%d", s.TotalTracks, s.TracksLoaded, s.TracksRecorded, s.TracksPlayed)
}
