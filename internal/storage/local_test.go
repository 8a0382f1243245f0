package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/daleel/daleel-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Lifecycle(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "materials/a.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Upload(ctx, "materials/a.pdf", strings.NewReader("%PDF-1.7")))

	ok, err = s.Exists(ctx, "materials/a.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Download(ctx, "materials/a.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(body))

	require.NoError(t, s.Delete(ctx, "materials/a.pdf"))
	_, err = s.Download(ctx, "materials/a.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	assert.NoError(t, s.Delete(ctx, "materials/a.pdf"), "deleting twice is not an error")
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "a/../../b", "/"} {
		assert.Error(t, s.Upload(context.Background(), key, strings.NewReader("x")), key)
	}
}

func TestNew_SelectsDriver(t *testing.T) {
	s, err := New(&config.Config{StorageDriver: config.StorageLocal, UploadDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	s, err = New(&config.Config{StorageDriver: config.StorageS3, S3: config.S3Config{Region: "us-east-1", Bucket: "b", Endpoint: "http://localhost:9000"}})
	require.NoError(t, err)
	assert.IsType(t, &S3Storage{}, s)

	_, err = New(&config.Config{StorageDriver: "ftp"})
	assert.Error(t, err)
}
