// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package objectstore

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir, "http://localhost:3318/")

	url, err := s.Put(context.Background(), "avatars/u1/a.jpg", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3318/storage/avatars/u1/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "avatars", "u1", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "avatars", "u1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary upload file should be gone")
}

func TestLocalStoreRejectsBadPaths(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "http://x")
	for _, name := range []string{"", "../escape.jpg", "avatars/../../escape.jpg", "/abs.jpg", "avatars//a.jpg"} {
		_, err := s.Put(context.Background(), name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidPath, name)
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLocalStoreHandlerServesFilesOnly(t *testing.T) {
	s := NewLocalStore(t.TempDir(), "http://files.test")
	_, err := s.Put(context.Background(), "avatars/u1/a.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)

	h := http.StripPrefix("/storage/", s.Handler())

	tests := []struct {
		path     string
		expected int
	}{
		{"/storage/avatars/u1/a.jpg", http.StatusOK},
		{"/storage/avatars/", http.StatusNotFound},
		{"/storage/avatars/u1/", http.StatusNotFound},
		{"/storage/", http.StatusNotFound},
		{"/storage/avatars/u1/missing.jpg", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, tt.expected, w.Code)
			assert.NotContains(t, w.Body.String(), "u1")
			if tt.expected == http.StatusOK {
				assert.Equal(t, "jpeg", w.Body.String())
			}
		})
	}
}

func TestAvatarUpload(t *testing.T) {
	dir := t.TempDir()
	avatars := NewAvatars(NewLocalStore(dir, "http://cdn"), 1<<20)

	url, err := avatars.Upload(context.Background(), "u1", bytes.NewReader(encodePNG(t, 600, 300)))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://cdn/storage/avatars/u1/"), url)
	require.True(t, strings.HasSuffix(url, ".jpg"), url)

	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "http://cdn/storage/"))))
	require.NoError(t, err)
	defer f.Close()

	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, AvatarSize, img.Bounds().Dx())
	assert.Equal(t, AvatarSize, img.Bounds().Dy())
}

func TestAvatarUploadSmallImageKeepsSize(t *testing.T) {
	dir := t.TempDir()
	avatars := NewAvatars(NewLocalStore(dir, "http://cdn"), 1<<20)

	url, err := avatars.Upload(context.Background(), "u1", bytes.NewReader(encodePNG(t, 80, 120)))
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "http://cdn/storage/"))))
	require.NoError(t, err)
	defer f.Close()

	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Width)
	assert.Equal(t, 80, cfg.Height)
}

func TestAvatarUploadRejects(t *testing.T) {
	avatars := NewAvatars(NewLocalStore(t.TempDir(), "http://cdn"), 1024)

	_, err := avatars.Upload(context.Background(), "u1", bytes.NewReader(encodePNG(t, 300, 300)))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "1.0 kB")

	_, err = avatars.Upload(context.Background(), "u1", strings.NewReader("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
