package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/seborama/sockvcr/cassette"
)

func showCmd() *cobra.Command {
	var cassetteFile, keyFile string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the tracks of a cassette",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, opts, err := cassetteOptions(cmd.Context(), cassetteFile, keyFile)
			if err != nil {
				return err
			}

			return showCassette(cmd.OutOrStdout(), name, opts...)
		},
	}

	cmd.Flags().StringVar(&cassetteFile, "cassette-file", "", "location of the cassette file (local path or s3://bucket/key)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "location of the encryption key file, for encrypted cassettes")

	return cmd
}

func showCassette(w io.Writer, name string, opts ...cassette.Option) error {
	// LoadCassette swallows read failures, which would show as an empty cassette.
	if _, err := cassette.DumpCassette(name, opts...); err != nil {
		return errors.Wrap(err, "cassette")
	}

	k7 := cassette.LoadCassette(name, opts...)

	fmt.Fprintf(w, "%s: %s\n", k7.Name(), k7)

	for i, trk := range k7.Tracks() {
		host, port := trk.Request.HostAndPort()
		fmt.Fprintf(w, "%4d  %s:%d  %s  ->  %s\n", i+1, host, port, trk.Request.RequestLine(), trk.Response.StatusLine())
	}

	return nil
}
