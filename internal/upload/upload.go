// Package upload checks image files and hands them to object storage.
package upload

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/debemdeboas/the-press/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

const DefaultMaxBytes = 5 * 1024 * 1024

var (
	ErrNotImage         = errors.New("upload: file is not an image")
	ErrTooLarge         = errors.New("upload: file is too large")
	ErrDuplicateName    = errors.New("upload: a file with this name already exists")
	ErrNotAuthenticated = errors.New("upload: not authenticated")
	ErrUploadFailed     = errors.New("upload: upload failed")
)

var uploadLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	uploadLogger = l
}

type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Uploader struct {
	store storage.Store

	maxBytes    int64
	allowedMIME string
	prefix      string

	now func() time.Time
}

func NewUploader(store storage.Store, maxBytes int64, allowedMIME, prefix string) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if allowedMIME == "" {
		allowedMIME = "image/"
	}
	return &Uploader{
		store:       store,
		maxBytes:    maxBytes,
		allowedMIME: allowedMIME,
		prefix:      strings.Trim(prefix, "/"),
		now:         time.Now,
	}
}

// Upload stores f on behalf of user and returns its public URL. Type and size are checked
// before storage is contacted. Failures are never retried.
func (u *Uploader) Upload(ctx context.Context, user string, f File) (string, error) {
	if user == "" {
		return "", ErrNotAuthenticated
	}
	if !strings.HasPrefix(f.ContentType, u.allowedMIME) {
		return "", fmt.Errorf("%w: %s", ErrNotImage, f.ContentType)
	}
	if f.Size > u.maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, f.Size, u.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(f.Body, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if int64(len(data)) > u.maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, u.maxBytes)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), u.allowedMIME) || detected.Is("image/svg+xml") || detected.Extension() == "" {
		return "", fmt.Errorf("%w: content is %s", ErrNotImage, detected.String())
	}

	key := u.objectKey(detected.Extension())
	url, err := u.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), detected.String())
	if errors.Is(err, storage.ErrExists) {
		return "", ErrDuplicateName
	} else if err != nil {
		uploadLogger.Error().Err(err).Str("key", key).Msg("Upload failed")
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	uploadLogger.Info().Str("user", user).Str("key", key).Int("size", len(data)).Msg("Image uploaded")
	return url, nil
}

// objectKey builds "<prefix>/<random>-<unix ms><ext>". ext is always the sniffed one, the
// client's file name never reaches the key.
func (u *Uploader) objectKey(ext string) string {
	var random [6]byte
	rand.Read(random[:])

	file := fmt.Sprintf("%s-%d%s", hex.EncodeToString(random[:]), u.now().UnixMilli(), ext)
	if u.prefix == "" {
		return file
	}
	return u.prefix + "/" + file
}
