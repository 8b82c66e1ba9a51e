package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder
)

// Info describes an accepted upload.
type Info struct {
	Format      string
	ContentType string
	Ext         string
	Width       int
	Height      int
}

var formats = map[string]struct {
	contentType string
	ext         string
}{
	"jpeg": {contentType: "image/jpeg", ext: ".jpg"},
	"png":  {contentType: "image/png", ext: ".png"},
	"gif":  {contentType: "image/gif", ext: ".gif"},
	"webp": {contentType: "image/webp", ext: ".webp"},
	"bmp":  {contentType: "image/bmp", ext: ".bmp"},
	"tiff": {contentType: "image/tiff", ext: ".tiff"},
}

// Inspect checks size and sniffs the format by decoding the image header.
// The client-supplied filename and content type are not trusted.
func Inspect(data []byte, maxSize int64) (Info, error) {
	if maxSize > 0 && int64(len(data)) > maxSize {
		return Info{}, fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(data), maxSize)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	f, ok := formats[format]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, format)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}

	return Info{
		Format:      format,
		ContentType: f.contentType,
		Ext:         f.ext,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
