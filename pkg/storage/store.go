package stores

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"NeighborWatch/pkg/util"

	"github.com/gabriel-vasile/mimetype"
)

const (
	DriverLocal = "local"
	DriverMinio = "minio"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
	ErrExists     = errors.New("object already exists")
)

// Object is an opened upload. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Store persists uploaded images under flat keys. Write never replaces an
// existing object; it fails with ErrExists instead.
type Store interface {
	Read(ctx context.Context, key string) (*Object, error)
	Write(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type Config struct {
	Driver string `env:"STORAGE_DRIVER"`
	Dir    string `env:"UPLOAD_DIR"`
	Minio  MinioConfig
}

// New returns the backend selected by cfg.Driver.
func New(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverLocal:
		return NewLocalStore(cfg.Dir)
	case DriverMinio:
		return NewMinioStore(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// ValidKey reports whether key is a flat, already sanitized file name.
// Anything carrying a path separator, a dot segment or characters the
// sanitizer would strip is rejected.
func ValidKey(key string) bool {
	return key != "" && util.SecureFilename(key) == key
}

// sniff detects the content type from the head of r and returns a reader
// that still yields the full stream.
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), r), nil
}
