// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/nfnt/resize"

	"github.com/danielhkuo/ballotbox/auth"
)

// AvatarSize is the edge length of stored avatars, in pixels
const AvatarSize = 256

var (
	ErrTooLarge         = errors.New("image is too large")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// Avatars turns uploaded images into square JPEG thumbnails
type Avatars struct {
	store    Store
	maxBytes int64
}

func NewAvatars(store Store, maxBytes int64) *Avatars {
	return &Avatars{store: store, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted upload
func (a *Avatars) MaxBytes() int64 {
	return a.maxBytes
}

// Upload decodes a PNG, JPEG or GIF, resizes it and stores it under
// avatars/<userID>/<random>.jpg, returning the public URL
func (a *Avatars) Upload(ctx context.Context, userID string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, a.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if int64(len(data)) > a.maxBytes {
		return "", fmt.Errorf("%w: limit is %s", ErrTooLarge, humanize.Bytes(uint64(a.maxBytes)))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	// Thumbnail only shrinks, so small squares are stored as they are
	thumb := resize.Thumbnail(AvatarSize, AvatarSize, cropSquare(img), resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode avatar: %w", err)
	}

	name, err := auth.GenerateID(12)
	if err != nil {
		return "", err
	}
	return a.store.Put(ctx, "avatars/"+userID+"/"+name+".jpg", &buf)
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func cropSquare(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == b.Dy() {
		return img
	}
	side := min(b.Dx(), b.Dy())
	si, ok := img.(subImager)
	if !ok {
		return img
	}
	x := b.Min.X + (b.Dx()-side)/2
	y := b.Min.Y + (b.Dy()-side)/2
	return si.SubImage(image.Rect(x, y, x+side, y+side))
}
