package main

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/seborama/sockvcr/cassette"
	"github.com/seborama/sockvcr/encryption"
	"github.com/seborama/sockvcr/fileio"
)

const s3Scheme = "s3://"

// cassetteOptions returns the cassette name and options for the cassette
// location and key file supplied on the command line.
func cassetteOptions(ctx context.Context, cassetteFile, keyFile string) (string, []cassette.Option, error) {
	if cassetteFile == "" {
		return "", nil, errors.New("please specify a cassette file with the 'cassette-file' argument")
	}

	var opts []cassette.Option

	name := cassetteFile

	if strings.HasPrefix(cassetteFile, s3Scheme) {
		s3Client, err := newS3Client(ctx)
		if err != nil {
			return "", nil, err
		}

		name = "/" + strings.TrimPrefix(cassetteFile, s3Scheme)
		opts = append(opts, cassette.WithStore(fileio.NewAWS(s3Client)))
	}

	if keyFile != "" {
		crypter, err := crypterFor(name, keyFile, opts...)
		if err != nil {
			return "", nil, err
		}

		opts = append(opts, cassette.WithCrypter(crypter))
	}

	return name, opts, nil
}

// crypterFor creates a crypter of the kind the cassette was encrypted with.
func crypterFor(name, keyFile string, opts ...cassette.Option) (*encryption.Crypter, error) {
	key, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "key file")
	}

	kind := encryption.KindAESGCM

	raw, err := cassette.ReadRaw(name, opts...)
	if err != nil {
		return nil, err
	}

	if encryption.IsEncrypted(raw) {
		if kind, err = encryption.EnvelopeKind(raw); err != nil {
			return nil, errors.Wrap(err, "cassette envelope")
		}
	}

	crypter, err := encryption.NewCrypterForKind(kind, key)
	if err != nil {
		return nil, errors.Wrap(err, "cryptographer")
	}

	return crypter, nil
}

func newS3Client(ctx context.Context) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error

	if region := os.Getenv("AWS_DEFAULT_REGION"); region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	endpoint := os.Getenv("LOCALSTACK_ENDPOINT")
	if endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           endpoint,
				SigningRegion: region,
			}, nil
		})
		loadOpts = append(loadOpts, config.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load the AWS configs")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) { o.UsePathStyle = endpoint != "" }), nil
}
