// Package storage keeps uploaded post images either on local disk or in an
// S3 bucket.
package storage

import (
	"bufio"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"
)

// ImagePrefix is the key prefix for post images.
const ImagePrefix = "posts_images"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Store persists binary objects under keys.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Images validates uploads and stores them through a Store.
type Images struct {
	store    Store
	maxBytes int64
}

func NewImages(store Store, maxMB int) *Images {
	return &Images{store: store, maxBytes: int64(maxMB) << 20}
}

// Save stores an uploaded image and returns its key. Non-image content and
// oversized files are NotValid.
func (i *Images) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > i.maxBytes {
		return "", errors.NotValidf("image larger than %d MB", i.maxBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return "", errors.Annotate(err, "open upload")
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 512)
	head, err := reader.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", errors.Annotate(err, "read upload")
	}
	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", errors.NotValidf("content type %q for image", contentType)
	}

	key := path.Join(ImagePrefix, uuid.New().String()+ext)
	if err := i.store.Put(ctx, key, contentType, reader, fh.Size); err != nil {
		return "", errors.Annotatef(err, "store image %q", key)
	}
	return key, nil
}

// Delete removes a stored image; empty keys are ignored.
func (i *Images) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return i.store.Delete(ctx, key)
}

// URL returns the public URL of key, or "" when there is no image.
func (i *Images) URL(key string) string {
	if key == "" {
		return ""
	}
	return i.store.URL(key)
}
