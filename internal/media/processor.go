// Package media turns uploaded avatar images into fixed-size thumbnails.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

// AvatarSize is the width and height of stored avatars in pixels.
const AvatarSize = 300

const (
	// MaxSourceSide bounds the width and height an uploaded image may declare.
	MaxSourceSide = 4096
	// MaxSourcePixels bounds the declared pixel count of an uploaded image.
	MaxSourcePixels = 16 * 1024 * 1024
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecodingImage     = errors.New("failed to decode image")
	ErrEncodingImage     = errors.New("failed to encode image")
	ErrImageTooLarge     = errors.New("image dimensions too large")
)

//go:generate mockgen -source=processor.go -destination=../mock/media_processor_mock.go -package=mock

// Processor resizes uploaded images.
type Processor interface {
	// Resize decodes data, scales it to the configured square size and
	// encodes it in the format implied by ext (".jpg", ".jpeg", ".png",
	// ".gif"; case-insensitive).
	Resize(data []byte, ext string) ([]byte, error)
}

type imageProcessor struct {
	width  int
	height int
}

// NewProcessor returns a Processor producing AvatarSize×AvatarSize images.
func NewProcessor() Processor {
	return &imageProcessor{width: AvatarSize, height: AvatarSize}
}

// SupportedExtension reports whether ext names a format Resize can write.
func SupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

func (p *imageProcessor) Resize(data []byte, ext string) ([]byte, error) {
	if !SupportedExtension(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	// the header is checked before decoding so pixel buffers are never
	// allocated for an oversized declared canvas
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 ||
		cfg.Width > MaxSourceSide || cfg.Height > MaxSourceSide ||
		cfg.Width*cfg.Height > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %w: %dx%d", ErrDecodingImage, ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingImage, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	case ".png":
		err = png.Encode(&buf, dst)
	case ".gif":
		err = gif.Encode(&buf, dst, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodingImage, err)
	}

	return buf.Bytes(), nil
}
