// Package sampler turns an uploaded image into a canvas-sized pixel buffer and
// answers per-cell questions about it: is this footprint masked out, and how
// bright is it.
package sampler

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 5 << 20
	// MaxUploadPixels bounds the decoded size; a few compressed bytes can
	// declare a huge bitmap.
	MaxUploadPixels = 40 << 20
)

var (
	// ErrTooLarge is returned for uploads over MaxUploadBytes.
	ErrTooLarge = errors.New("image exceeds 5MB upload limit")
	// ErrUnsupportedType is returned for anything but PNG, JPEG, GIF or SVG.
	ErrUnsupportedType = errors.New("unsupported image type")
	// ErrEmptyImage is returned for images or canvases with no area.
	ErrEmptyImage = errors.New("image has no area")
	// ErrTooManyPixels is returned for images declaring more than
	// MaxUploadPixels pixels.
	ErrTooManyPixels = errors.New("image dimensions too large")
)

// Format identifies the encoding of an accepted upload.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatSVG  Format = "svg"
)

// Decode reads one upload, validates its size and type and decodes it. SVG
// documents are rasterised at their view box size.
func Decode(r io.Reader) (image.Image, Format, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, "", ErrTooLarge
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}

	format, ok := sniff(data)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedType, http.DetectContentType(data))
	}

	var img image.Image
	if format == FormatSVG {
		img, err = rasterizeSVG(data)
	} else {
		var cfg image.Config
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
		if err == nil {
			if err = checkPixels(cfg.Width, cfg.Height); err != nil {
				return nil, "", err
			}
			img, _, err = image.Decode(bytes.NewReader(data))
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", format, err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", ErrEmptyImage
	}
	return img, format, nil
}

func sniff(data []byte) (Format, bool) {
	switch ct := http.DetectContentType(data); {
	case ct == "image/png":
		return FormatPNG, true
	case ct == "image/jpeg":
		return FormatJPEG, true
	case ct == "image/gif":
		return FormatGIF, true
	case strings.HasPrefix(ct, "text/"):
		head := data[:min(len(data), 1024)]
		if bytes.Contains(head, []byte("<svg")) {
			return FormatSVG, true
		}
	}
	return "", false
}

func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	w := int(math.Ceil(icon.ViewBox.W))
	h := int(math.Ceil(icon.ViewBox.H))
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}
	if err := checkPixels(w, h); err != nil {
		return nil, err
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}

func checkPixels(w, h int) error {
	if w > 0 && h > 0 && int64(w)*int64(h) > MaxUploadPixels {
		return fmt.Errorf("%w: %dx%d", ErrTooManyPixels, w, h)
	}
	return nil
}
