package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/seborama/sockvcr/cassette"
)

func decryptCmd() *cobra.Command {
	var cassetteFile, keyFile string

	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt an encrypted cassette to the standard output",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keyFile == "" {
				return errors.New("please specify a key file with the 'key-file' argument")
			}

			name, opts, err := cassetteOptions(cmd.Context(), cassetteFile, keyFile)
			if err != nil {
				return err
			}

			return decryptCassette(cmd.OutOrStdout(), name, opts...)
		},
	}

	cmd.Flags().StringVar(&cassetteFile, "cassette-file", "", "location of the cassette file to decrypt (local path or s3://bucket/key)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "location of the encryption key file")

	return cmd
}

func decryptCassette(w io.Writer, name string, opts ...cassette.Option) error {
	data, err := cassette.DumpCassette(name, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
