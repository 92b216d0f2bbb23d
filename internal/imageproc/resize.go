// Package imageproc resizes in-memory images for derivative generation.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for payloads the resizer cannot decode
// (SVG, ICO, WebP...). Callers may store such payloads unchanged.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// DefaultJPEGQuality is used when re-encoding JPEG derivatives.
const DefaultJPEGQuality = 85

// Dimensions is a target size. A zero field means "not constrained".
type Dimensions struct {
	Width  int `yaml:"width,omitempty" json:"width,omitempty"`
	Height int `yaml:"height,omitempty" json:"height,omitempty"`
}

// Resizer scales images down to target dimensions, never enlarging them.
type Resizer struct {
	Quality int
}

// NewResizer returns a Resizer with default JPEG quality.
func NewResizer() *Resizer {
	return &Resizer{Quality: DefaultJPEGQuality}
}

// Resize returns data scaled to fit d and re-encoded in its source format.
// With both sides set the image is cropped to fill the box; with one side set
// the aspect ratio is kept. If the image already fits, data is returned as is.
func (r *Resizer) Resize(data []byte, d Dimensions) ([]byte, error) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	w, h, fill, ok := fit(b.Dx(), b.Dy(), d)
	if !ok {
		return data, nil
	}

	var dst image.Image
	if fill {
		dst = imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	} else {
		dst = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	quality := r.Quality
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, format, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// fit computes the output size for a srcW x srcH image. ok is false when the
// image already fits and must not be touched.
func fit(srcW, srcH int, d Dimensions) (w, h int, fill, ok bool) {
	switch {
	case d.Width > 0 && d.Height > 0:
		if d.Width >= srcW && d.Height >= srcH {
			return 0, 0, false, false
		}
		return min(d.Width, srcW), min(d.Height, srcH), true, true
	case d.Width > 0:
		if d.Width >= srcW {
			return 0, 0, false, false
		}
		return d.Width, 0, false, true
	case d.Height > 0:
		if d.Height >= srcH {
			return 0, 0, false, false
		}
		return 0, d.Height, false, true
	default:
		return 0, 0, false, false
	}
}
