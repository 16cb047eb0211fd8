// Package imageopt shrinks uploaded images before they are persisted.
//
// Any decodable image is scaled so that neither side exceeds MaxDimension,
// flattened onto white and re-encoded as JPEG at a fixed quality.
package imageopt

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"

	// registered decoders
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension  = 1600
	DefaultQuality       = 82
	DefaultMaxInputBytes = 20 << 20
	DefaultMaxPixels     = 40_000_000
)

var (
	// ErrDecode is returned when the input is not a supported image.
	ErrDecode = errors.New("image could not be decoded")
	// ErrTooLarge is returned when the input exceeds MaxInputBytes or MaxPixels.
	ErrTooLarge = errors.New("image exceeds the upload size limit")
)

// Optimizer holds the resize and encode parameters.
type Optimizer struct {
	MaxDimension  int
	Quality       int
	MaxInputBytes int64
	// MaxPixels bounds width*height before the pixel buffer is allocated.
	MaxPixels     int64
}

// Result is an optimized JPEG.
type Result struct {
	Bytes          []byte
	Width          int
	Height         int
	OriginalWidth  int
	OriginalHeight int
	SourceFormat   string
}

// New returns an Optimizer, substituting defaults for non-positive values.
func New(maxDimension, quality int) *Optimizer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Optimizer{
		MaxDimension:  maxDimension,
		Quality:       quality,
		MaxInputBytes: DefaultMaxInputBytes,
		MaxPixels:     DefaultMaxPixels,
	}
}

// MIMEType is always image/jpeg.
func (r *Result) MIMEType() string {
	return "image/jpeg"
}

// DataURI encodes the result for inline embedding.
func (r *Result) DataURI() string {
	return "data:" + r.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(r.Bytes)
}

// Optimize decodes r, scales it to fit MaxDimension and re-encodes it.
func (o *Optimizer) Optimize(r io.Reader) (*Result, error) {
	limit := o.MaxInputBytes
	if limit <= 0 {
		limit = DefaultMaxInputBytes
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(raw)) > limit {
		return nil, ErrTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > o.maxPixels() {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := src.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), o.maxDimension())

	// JPEG has no alpha channel
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if width == bounds.Dx() && height == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: o.quality()}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &Result{
		Bytes:          buf.Bytes(),
		Width:          width,
		Height:         height,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		SourceFormat:   format,
	}, nil
}

// FitWithin scales (width, height) down so neither exceeds limit, keeping the
// aspect ratio. The larger side becomes exactly limit; the other is rounded
// and never drops below 1. Sizes already within bounds are returned as is.
func FitWithin(width, height, limit int) (int, int) {
	if width <= 0 || height <= 0 || limit <= 0 {
		return width, height
	}
	if width <= limit && height <= limit {
		return width, height
	}

	if width >= height {
		scaled := int(math.Round(float64(height) * float64(limit) / float64(width)))
		return limit, clampMin(scaled)
	}
	scaled := int(math.Round(float64(width) * float64(limit) / float64(height)))
	return clampMin(scaled), limit
}

func clampMin(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func (o *Optimizer) maxDimension() int {
	if o.MaxDimension <= 0 {
		return DefaultMaxDimension
	}
	return o.MaxDimension
}

func (o *Optimizer) maxPixels() int64 {
	if o.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return o.MaxPixels
}

func (o *Optimizer) quality() int {
	if o.Quality <= 0 || o.Quality > 100 {
		return DefaultQuality
	}
	return o.Quality
}
