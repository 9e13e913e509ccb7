package thumbs

import (
	"fmt"
	"image"
	"os"
	"time"

	"photo-cull/internal/logging"
	"photo-cull/internal/metrics"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DecodeOptions selects between a downscaled thumbnail decode and a
// native-resolution decode.
type DecodeOptions struct {
	// Thumbnail requests a decode targeting MaxDimension on the longest
	// side. Decoders may shrink during decode.
	Thumbnail bool
	// MaxDimension is the target bound in pixels when Thumbnail is set.
	MaxDimension int
}

// Decoder is the platform image-decoding boundary: given a path,
// return a decoded bitmap or fail. The loader treats it as an opaque
// capability with exactly those two outcomes.
type Decoder interface {
	Decode(path string, opts DecodeOptions) (image.Image, error)
}

// FileDecoder decodes images from disk. For thumbnails it prefers
// libvips, which shrinks during decode; otherwise it falls back to the
// pure-Go decode chain (JPEG/PNG/GIF/TIFF/WebP via imaging and
// x/image). Raw formats decode only where libvips carries the
// corresponding loader; a raw file the platform cannot decode fails
// like any other undecodable file.
type FileDecoder struct{}

// NewFileDecoder returns the default on-disk decoder.
func NewFileDecoder() *FileDecoder {
	return &FileDecoder{}
}

func (d *FileDecoder) Decode(path string, opts DecodeOptions) (image.Image, error) {
	mode := "full"
	if opts.Thumbnail {
		mode = "thumbnail"
	}

	start := time.Now()
	img, err := d.decode(path, opts)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DecodeTotal.WithLabelValues(mode, status).Inc()
	metrics.DecodeDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	return img, err
}

func (d *FileDecoder) decode(path string, opts DecodeOptions) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file not accessible: %w", err)
	}

	if opts.Thumbnail && opts.MaxDimension > 0 {
		if IsVipsAvailable() {
			img, err := loadImageWithVips(path, opts.MaxDimension, opts.MaxDimension)
			if err == nil {
				return img, nil
			}
			logging.Debug("vips decode failed for %s: %v, falling back", path, err)
		}

		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("decode failed for %s: %w", path, err)
		}
		return imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos), nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode failed for %s: %w", path, err)
	}
	return img, nil
}
