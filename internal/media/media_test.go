package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
)

// smallGIF is a 1x1 GIF.
var smallGIF = []byte(
	"\x47\x49\x46\x38\x39\x61\x01\x00\x01\x00\x80\x00\x00\x05\x04" +
		"\x04\x00\x00\x00\x2c\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02" +
		"\x44\x01\x00\x3b",
)

func TestValidate(t *testing.T) {
	img, err := Validate("small_pic.jpg", smallGIF)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", img.ContentType)
	assert.Equal(t, ".gif", img.Extension)

	_, err = Validate("small_doc.doc", smallGIF)
	assert.ErrorIs(t, err, ErrNotImage)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = Validate("notes.png", []byte("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = Validate("huge.gif", append(append([]byte{}, smallGIF...), make([]byte, MaxImageSize)...))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSave_LocalStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/media/")

	ref, err := Save(context.Background(), store, "pic.gif", bytes.NewReader(smallGIF))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/media/posts/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".gif"), ref)

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(ref, "/media/")))
	require.NoError(t, err)
	assert.Equal(t, smallGIF, stored)
}

func TestSave_RejectsBeforeStoring(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/media")

	_, err := Save(context.Background(), store, "small_doc.doc", bytes.NewReader(smallGIF))
	assert.ErrorIs(t, err, ErrNotImage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = Save(context.Background(), nil, "pic.gif", bytes.NewReader(smallGIF))
	assert.Error(t, err)
}

func TestS3Store_URL(t *testing.T) {
	s := &S3Store{opts: S3Options{Bucket: "imgs", Prefix: "blog"}}
	assert.Equal(t, "blog/posts/a.gif", s.Key("posts/a.gif"))
	assert.Equal(t, "https://imgs.s3.amazonaws.com/blog/posts/a.gif", s.URL("blog/posts/a.gif"))

	s.opts.PublicURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/blog/posts/a.gif", s.URL("blog/posts/a.gif"))
}
