package fileio

import (
	"context"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const defaultRedisKeyPrefix = "sockvcr:cassette:"

// RedisFile provides a storage backed by Redis. Each cassette is stored as a
// single string value keyed by its name.
type RedisFile struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a new RedisFile.
// An empty prefix defaults to "sockvcr:cassette:".
func NewRedis(client *redis.Client, prefix string) *RedisFile {
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}

	return &RedisFile{
		client: client,
		prefix: prefix,
	}
}

func (f *RedisFile) key(name string) string {
	return f.prefix + name
}

// MkdirAll is a noop in Redis.
func (f *RedisFile) MkdirAll(_ string, _ os.FileMode) error {
	return nil
}

// ReadFile reads the named cassette.
// A missing key is reported as os.ErrNotExist.
func (f *RedisFile) ReadFile(name string) ([]byte, error) {
	data, err := f.client.Get(context.TODO(), f.key(name)).Bytes()
	if err == redis.Nil {
		return nil, errors.Wrap(os.ErrNotExist, name)
	}

	return data, errors.WithStack(err)
}

// WriteFile writes the named cassette. It never expires.
func (f *RedisFile) WriteFile(name string, data []byte, _ os.FileMode) error {
	return errors.WithStack(f.client.Set(context.TODO(), f.key(name), data, 0).Err())
}

// NotExist returns true when the named cassette does not exist.
func (f *RedisFile) NotExist(name string) (bool, error) {
	n, err := f.client.Exists(context.TODO(), f.key(name)).Result()
	if err != nil {
		return false, errors.WithStack(err)
	}

	return n == 0, nil
}
