/*
Package sockvcr records and replays network interactions for offline unit / behavioural / integration tests.

Outbound TCP connections are diverted at dial time. Requests are matched against the recordings of a
cassette by their exact raw content. A match is replayed, anything else goes to the live network and
is recorded when the cassette is closed.

	vcr := sockvcr.NewVCR("fixtures/my-test.cassette.json")

	err := vcr.Play(func(client *http.Client) error {
		resp, err := client.Get("http://example.com/foo")
		...
	})

TLS connections are not diverted.
*/
package sockvcr
