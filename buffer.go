package heatmapper

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var (
	// ErrNullBuffer is returned when a required buffer is missing.
	ErrNullBuffer = errors.New("heatmapper: buffer is nil")
	// ErrDimensionMismatch is returned when two buffers differ in width or height.
	ErrDimensionMismatch = errors.New("heatmapper: dimension mismatch")
	// ErrInvalidSize is returned for non-positive sizes or a pixel slice of the wrong length.
	ErrInvalidSize = errors.New("heatmapper: invalid buffer size")
	// ErrInvalidWeight is returned when a blend weight is NaN or outside [0,1].
	ErrInvalidWeight = errors.New("heatmapper: blend weight out of range")
)

// PixelBuffer is an 8-bit RGB image. It implements image.Image.
type PixelBuffer struct {
	W, H int
	Pix  []uint8 // Interleaved RGB, row-major, len = W*H*3
}

func NewPixelBuffer(w, h int) (*PixelBuffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	return &PixelBuffer{W: w, H: h, Pix: make([]uint8, w*h*3)}, nil
}

// FromImage flattens img onto an opaque black canvas and keeps the RGB
// channels only. Translucent pixels end up premultiplied against black.
func FromImage(img image.Image) (*PixelBuffer, error) {
	if img == nil {
		return nil, ErrNullBuffer
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf, err := NewPixelBuffer(w, h)
	if err != nil {
		return nil, err
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Over)
	for i := range w * h {
		copy(buf.Pix[i*3:i*3+3], canvas.Pix[i*4:i*4+3])
	}
	return buf, nil
}

func (b *PixelBuffer) Validate() error {
	if b == nil {
		return ErrNullBuffer
	}
	if b.W <= 0 || b.H <= 0 || len(b.Pix) != b.W*b.H*3 {
		return fmt.Errorf("%w: %dx%d with %d samples", ErrInvalidSize, b.W, b.H, len(b.Pix))
	}
	return nil
}

func (b *PixelBuffer) SameSize(other *PixelBuffer) bool {
	return b.W == other.W && b.H == other.H
}

func (b *PixelBuffer) Clone() *PixelBuffer {
	return &PixelBuffer{W: b.W, H: b.H, Pix: append([]uint8(nil), b.Pix...)}
}

func (b *PixelBuffer) RGB(x, y int) (r, g, bl uint8) {
	off := pixOffset(b.W, x, y)
	return b.Pix[off], b.Pix[off+1], b.Pix[off+2]
}

func (b *PixelBuffer) SetRGB(x, y int, r, g, bl uint8) {
	off := pixOffset(b.W, x, y)
	b.Pix[off] = r
	b.Pix[off+1] = g
	b.Pix[off+2] = bl
}

func (b *PixelBuffer) ColorModel() color.Model {
	return color.RGBAModel
}

func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.W, b.H)
}

func (b *PixelBuffer) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return color.RGBA{}
	}
	r, g, bl := b.RGB(x, y)
	return color.RGBA{R: r, G: g, B: bl, A: 255}
}

// ToRGBA returns an opaque copy suitable for the image encoders.
func (b *PixelBuffer) ToRGBA() *image.RGBA {
	out := image.NewRGBA(b.Bounds())
	for i := range b.W * b.H {
		out.Pix[i*4] = b.Pix[i*3]
		out.Pix[i*4+1] = b.Pix[i*3+1]
		out.Pix[i*4+2] = b.Pix[i*3+2]
		out.Pix[i*4+3] = 255
	}
	return out
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}
