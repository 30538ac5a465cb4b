// Package storage stores uploaded media in an object store and reports their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/rs/zerolog"
)

var ErrExists = errors.New("storage: object already exists")

var storageLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storageLogger = l
}

type Object struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

type Store interface {
	// Put writes a new object and returns its public URL. Existing keys are never
	// overwritten; Put returns ErrExists instead.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]Object, error)
}

// Provisioner creates the bucket or directory a Store writes to. It runs at deploy time.
type Provisioner interface {
	Provision(ctx context.Context) error
}

func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "minio":
		return NewMinIOStore(cfg)
	case "fs", "":
		return NewFSStore(cfg.LocalDir, cfg.PublicBaseURL), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func publicURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
