// Package storage validates and stores featured images in the object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"herald/internal/fault"
	"herald/pkg/s3"
)

// MaxImageSize is the upload ceiling for featured images.
const MaxImageSize = 5 << 20

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// Images writes featured images to a bucket and mints presigned read URLs.
type Images struct {
	client *s3.Client
	bucket string
	urlTTL time.Duration
}

func NewImages(client *s3.Client, bucket string, urlTTL time.Duration) *Images {
	return &Images{client: client, bucket: bucket, urlTTL: urlTTL}
}

// Store validates the upload and writes it under a fresh random key. The key
// goes on the article row; the object itself is immutable once written.
func (im *Images) Store(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", fault.Invalid(map[string]string{"image": "must be a JPEG or PNG"})
	}
	if size <= 0 || size > MaxImageSize {
		return "", fault.Invalid(map[string]string{"image": "must be between 1 byte and 5 MiB"})
	}

	key := fmt.Sprintf("articles/%s.%s", uuid.NewString(), ext)
	if err := im.client.PutObject(ctx, im.bucket, key, io.LimitReader(r, MaxImageSize), size, contentType); err != nil {
		return "", fault.Wrap(fault.Dependency, "image upload failed", err)
	}
	return key, nil
}

// Delete removes a stored image. Best effort on article deletion.
func (im *Images) Delete(ctx context.Context, key string) error {
	return im.client.DeleteObject(ctx, im.bucket, key)
}

// URL mints a time-limited read URL for a stored key.
func (im *Images) URL(ctx context.Context, key string) (string, error) {
	return im.client.PresignGet(ctx, im.bucket, key, im.urlTTL)
}
