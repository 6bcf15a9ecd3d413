package stores

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLocalStoreRoundTrip(t *testing.T) {
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "street.png", strings.NewReader(string(pngHeader))))

	ok, err := s.Exists(ctx, "street.png")
	require.NoError(t, err)
	assert.True(t, ok)

	obj, err := s.Read(ctx, "street.png")
	require.NoError(t, err)
	defer obj.Body.Close()
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, int64(len(pngHeader)), obj.Size)
	assert.Equal(t, "image/png", obj.ContentType)

	require.NoError(t, s.Delete(ctx, "street.png"))
	_, err = s.Read(ctx, "street.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	secret := filepath.Join(base, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("top secret"), 0o600))

	s, err := NewLocalStore(filepath.Join(base, "uploads"))
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../secret.txt", "..", ".", "a/b.png", `..\secret.txt`, "/etc/passwd", ""} {
		_, err := s.Read(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		assert.ErrorIs(t, s.Write(ctx, key, strings.NewReader("x")), ErrInvalidKey, key)
	}

	data, err := os.ReadFile(secret)
	require.NoError(t, err)
	assert.Equal(t, "top secret", string(data))
}

func TestLocalStoreMissingFile(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read(context.Background(), "nothing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.Exists(context.Background(), "nothing.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSelectsDriver(t *testing.T) {
	s, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = New(Config{Driver: "minio"})
	assert.Error(t, err)

	_, err = New(Config{Driver: "ftp"})
	assert.Error(t, err)
}

func TestLocalStoreNeverReplaces(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "gate.png", strings.NewReader("first")))
	assert.ErrorIs(t, s.Write(ctx, "gate.png", strings.NewReader("second")), ErrExists)

	data, err := os.ReadFile(filepath.Join(s.Root(), "gate.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocalStoreConcurrentWritesOneWinner(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Write(context.Background(), "same.png", strings.NewReader("payload"))
		}()
	}
	wg.Wait()
	close(errs)

	won := 0
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, ErrExists)
	}
	assert.Equal(t, 1, won)

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMinioNotFoundCodes(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}
