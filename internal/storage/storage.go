package storage

import (
	"context"
	"io"
)

// Service stores uploaded photos in remote object storage and returns a URL
// usable as a card link or avatar.
type Service interface {
	UploadPhoto(ctx context.Context, ext, contentType string, body io.Reader) (string, error)
}
