package blob

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBucket = "codeshare-test"

// minioTestEnv returns the endpoint and credentials of a test MinIO server,
// skipping the test when TEST_MINIO_ENDPOINT is unset.
func minioTestEnv(t *testing.T) (endpoint, accessKey, secretKey string) {
	t.Helper()
	endpoint = os.Getenv("TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEST_MINIO_ENDPOINT not set, skipping object store tests")
	}
	accessKey = os.Getenv("TEST_MINIO_ACCESS_KEY")
	if accessKey == "" {
		accessKey = "minioadmin"
	}
	secretKey = os.Getenv("TEST_MINIO_SECRET_KEY")
	if secretKey == "" {
		secretKey = "minioadmin"
	}
	return endpoint, accessKey, secretKey
}

func runBlobContract(t *testing.T, s Store) {
	ctx := context.Background()
	key := uuid.NewString() + "-a.txt"

	require.NoError(t, s.Save(ctx, key, strings.NewReader("hello"), 5))

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, key))

	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting a missing key is not an error
	assert.NoError(t, s.Delete(ctx, key))

	_, err = s.Open(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMinioStore(t *testing.T) {
	endpoint, accessKey, secretKey := minioTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewMinioStore(ctx, endpoint, accessKey, secretKey, testBucket)
	require.NoError(t, err)

	runBlobContract(t, s)
}

func TestS3Store(t *testing.T) {
	endpoint, accessKey, secretKey := minioTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// the minio store makes sure the bucket exists
	_, err := NewMinioStore(ctx, endpoint, accessKey, secretKey, testBucket)
	require.NoError(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", accessKey)
	t.Setenv("AWS_SECRET_ACCESS_KEY", secretKey)
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	s, err := NewS3Store(ctx, "us-east-1", testBucket, endpoint)
	require.NoError(t, err)

	runBlobContract(t, s)
}
