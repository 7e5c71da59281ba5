package heatmapper

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewPixelBufferInvalidSize(t *testing.T) {
	for _, size := range [][2]int{{0, 1}, {1, 0}, {-3, 4}} {
		if _, err := NewPixelBuffer(size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("%v: err = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestFromImageFlattensOverBlack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	src.SetNRGBA(6, 5, color.NRGBA{R: 200, G: 100, B: 0, A: 0})

	buf, err := FromImage(src)
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if buf.W != 2 || buf.H != 1 {
		t.Fatalf("size %dx%d, want 2x1", buf.W, buf.H)
	}
	if r, g, b := buf.RGB(0, 0); r != 200 || g != 100 || b != 50 {
		t.Errorf("opaque pixel = (%d,%d,%d)", r, g, b)
	}
	if r, g, b := buf.RGB(1, 0); r != 0 || g != 0 || b != 0 {
		t.Errorf("transparent pixel = (%d,%d,%d), want black", r, g, b)
	}

	if _, err := FromImage(nil); !errors.Is(err, ErrNullBuffer) {
		t.Errorf("nil image: err = %v", err)
	}
}

func TestPixelBufferImageInterface(t *testing.T) {
	buf, _ := NewPixelBuffer(2, 2)
	buf.SetRGB(1, 1, 9, 8, 7)

	var img image.Image = buf
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if c := img.At(1, 1); c != (color.RGBA{R: 9, G: 8, B: 7, A: 255}) {
		t.Errorf("At(1,1) = %v", c)
	}
	if c := img.At(5, 0); c != (color.RGBA{}) {
		t.Errorf("out of bounds At = %v", c)
	}

	rgba := buf.ToRGBA()
	if c := rgba.RGBAAt(1, 1); c != (color.RGBA{R: 9, G: 8, B: 7, A: 255}) {
		t.Errorf("ToRGBA(1,1) = %v", c)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	buf, _ := NewPixelBuffer(1, 1)
	c := buf.Clone()
	c.SetRGB(0, 0, 1, 1, 1)
	if r, _, _ := buf.RGB(0, 0); r != 0 {
		t.Error("clone shares pixels with original")
	}
}

func TestValidate(t *testing.T) {
	var nilBuf *PixelBuffer
	if err := nilBuf.Validate(); !errors.Is(err, ErrNullBuffer) {
		t.Errorf("nil: %v", err)
	}
	if err := (&PixelBuffer{W: 1, H: 1, Pix: make([]uint8, 4)}).Validate(); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("long pix: %v", err)
	}
	if err := (&PixelBuffer{W: 1, H: 1, Pix: make([]uint8, 3)}).Validate(); err != nil {
		t.Errorf("valid buffer: %v", err)
	}
}
