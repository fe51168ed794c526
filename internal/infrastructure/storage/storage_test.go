package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testS3Config() config.StorageConfig {
	return config.StorageConfig{
		Endpoint:     "localhost:9000",
		Region:       "eu-west-1",
		Bucket:       "return-evidence",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	}
}

func TestNewS3EvidenceStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing secret", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key are required"},
		{"bad endpoint", func(c *config.StorageConfig) { c.Endpoint = "http://" }, "invalid storage endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testS3Config()
			tt.mutate(&cfg)
			_, err := NewS3EvidenceStorage(context.Background(), cfg)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("minio:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "https://minio:9000", got)

	got, err = normalizeEndpoint("", false)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", got)
}

func TestS3EvidenceStorage_PresignedURLs(t *testing.T) {
	s, err := NewS3EvidenceStorage(context.Background(), testS3Config(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	key := "returns/3f0c/evidence/photo.jpg"
	upload, expiresAt, err := s.GenerateUploadURL(ctx, key, "image/jpeg", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(5*time.Minute), expiresAt)

	u, err := url.Parse(upload)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/return-evidence/"+key, u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, "host", u.Query().Get("X-Amz-SignedHeaders"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	download, expiresAt, err := s.GenerateDownloadURL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(defaultPresignExpiration), expiresAt)
	assert.True(t, strings.Contains(download, "X-Amz-Signature="))

	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	assert.Error(t, err)
}

func TestStubEvidenceStorage(t *testing.T) {
	s := NewStubEvidenceStorage("https://files.test")
	s.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	upload, expiresAt, err := s.GenerateUploadURL(context.Background(), "returns/a/b.pdf", "application/pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/upload/returns/a/b.pdf?expires=2026-03-01T11%3A00%3A00Z", upload)
	assert.Equal(t, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), expiresAt)

	download, _, err := s.GenerateDownloadURL(context.Background(), "returns/a/b.pdf", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(download, "https://files.test/download/returns/a/b.pdf"))

	_, _, err = s.GenerateUploadURL(context.Background(), "", "", time.Hour)
	assert.Error(t, err)
}

func TestNewEvidenceStorage_StubWithoutBucket(t *testing.T) {
	s, err := NewEvidenceStorage(context.Background(), config.StorageConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &StubEvidenceStorage{}, s)
}
