// Package media validates uploaded post images and stores them.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
)

// MaxImageSize caps an accepted upload.
const MaxImageSize = 5 << 20

// ErrNotImage is returned when an upload is not an accepted image: its content
// must sniff as an image and its file name must carry an image extension.
var ErrNotImage = fmt.Errorf("%w: upload is not an image", apperrors.ErrValidation)

// ErrTooLarge is returned for uploads above MaxImageSize.
var ErrTooLarge = fmt.Errorf("%w: image too large", apperrors.ErrValidation)

var imageExtensions = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Store persists image bytes under a name and returns the reference posts keep.
type Store interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Image is an upload that passed validation.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Validate checks the file name and sniffs the content.
func Validate(filename string, data []byte) (*Image, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return nil, ErrNotImage
	}
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrNotImage
	}

	return &Image{Data: data, ContentType: mt.String(), Extension: mt.Extension()}, nil
}

// Read reads at most MaxImageSize+1 bytes so Validate can reject oversize input.
func Read(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(r, MaxImageSize+1)); err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return buf.Bytes(), nil
}

// Save validates an upload and stores it under a fresh name in posts/.
func Save(ctx context.Context, store Store, filename string, r io.Reader) (string, error) {
	if store == nil {
		return "", errors.New("no media store configured")
	}
	data, err := Read(r)
	if err != nil {
		return "", err
	}
	img, err := Validate(filename, data)
	if err != nil {
		return "", err
	}

	name := "posts/" + uuid.NewString() + img.Extension
	return store.Save(ctx, name, img.Data, img.ContentType)
}
