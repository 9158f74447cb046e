package fileio

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
)

const uploadPartMiBs int64 = 10

// S3Client is the subset of the AWS S3 client used by S3File.
type S3Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3File provides a storage backed by AWS S3.
// Names are of the form "/bucketName/[folder/.../]file".
type S3File struct {
	s3Client S3Client
}

// NewAWS creates a new S3File backed by the supplied client.
func NewAWS(s3Client S3Client) *S3File {
	return &S3File{
		s3Client: s3Client,
	}
}

// MkdirAll is a noop in S3.
func (f *S3File) MkdirAll(_ string, _ os.FileMode) error {
	return nil
}

// ReadFile reads the named object and returns its contents.
func (f *S3File) ReadFile(name string) ([]byte, error) {
	bucket, key, err := bucketAndKey(name)
	if err != nil {
		return nil, err
	}

	out, err := f.s3Client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)

	return data, errors.WithStack(err)
}

// WriteFile writes data to the named object.
// The file mode is not applicable to S3.
func (f *S3File) WriteFile(name string, data []byte, _ os.FileMode) error {
	bucket, key, err := bucketAndKey(name)
	if err != nil {
		return err
	}

	uploader := manager.NewUploader(f.s3Client, func(u *manager.Uploader) {
		u.PartSize = uploadPartMiBs * 1024 * 1024
	})
	_, err = uploader.Upload(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})

	return errors.WithStack(err)
}

// NotExist returns true when the named object does not exist.
func (f *S3File) NotExist(name string) (bool, error) {
	bucket, key, err := bucketAndKey(name)
	if err != nil {
		return false, err
	}

	_, err = f.s3Client.HeadObject(context.TODO(), &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return false, nil
	}

	if IsS3NotFound(err) {
		return true, nil
	}

	return false, errors.WithStack(err)
}

// IsS3NotFound returns true when err is an S3 "no such object" API error.
func IsS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchKey":
		return true
	default:
		return false
	}
}

func bucketAndKey(name string) (bucket, key string, err error) {
	splits := strings.SplitN(name, "/", 3)
	if len(splits) != 3 || splits[0] != "" || splits[1] == "" || splits[2] == "" {
		err = errors.Errorf("invalid S3 object name: '%s' - expected format is '/bucketName/[folder/.../]file'", name)
		return
	}

	bucket = splits[1]
	key = splits[2]

	return
}
