package fileio_test

import (
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seborama/sockvcr/fileio"
)

func TestRedisFile(t *testing.T) {
	loadTestEnv()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()

	rf := fileio.NewRedis(client, "sockvcr-test:"+uuid.New().String()+":")

	const name = "TestRedisFile.cassette"

	notExist, err := rf.NotExist(name)
	require.NoError(t, err)
	assert.True(t, notExist)

	_, err = rf.ReadFile(name)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, rf.MkdirAll("ignored", 0))
	require.NoError(t, rf.WriteFile(name, []byte("hello"), 0))

	notExist, err = rf.NotExist(name)
	require.NoError(t, err)
	assert.False(t, notExist)

	data, err := rf.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}
