package heatmapper

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Luma weights of the saturation matrix. They sum to 1.
const (
	LumaRed   = 0.3086
	LumaGreen = 0.6094
	LumaBlue  = 0.0820
)

// SaturationMatrix returns the 3x3 matrix M with out = M * (r, g, b).
// s = 0 maps every pixel to its luma, s = 1 is the identity and s > 1
// pushes colors away from gray.
func SaturationMatrix(s float64) *mat.Dense {
	t := 1 - s
	rw, gw, bw := t*LumaRed, t*LumaGreen, t*LumaBlue
	return mat.NewDense(3, 3, []float64{
		rw + s, gw, bw,
		rw, gw + s, bw,
		rw, gw, bw + s,
	})
}

// RGB64 holds unclamped floating point RGB samples. Values may leave
// [0,255] after saturation; Clamp is the only place that fixes them.
type RGB64 struct {
	W, H int
	Pix  []float64 // Interleaved RGB, len = W*H*3
}

func (img *RGB64) At(x, y int) (r, g, b float64) {
	off := pixOffset(img.W, x, y)
	return img.Pix[off], img.Pix[off+1], img.Pix[off+2]
}

// Clamp converts to 8 bits: values are limited to [0,255] and truncated.
func (img *RGB64) Clamp() *PixelBuffer {
	out := &PixelBuffer{W: img.W, H: img.H, Pix: make([]uint8, len(img.Pix))}
	for i, v := range img.Pix {
		if math.IsNaN(v) {
			continue
		}
		out.Pix[i] = uint8(max(0, min(255, v)))
	}
	return out
}

// Saturate applies SaturationMatrix(s) to every pixel of buf. buf is not
// modified.
func Saturate(buf *PixelBuffer, s float64) (*RGB64, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	m := SaturationMatrix(s).RawMatrix().Data
	out := &RGB64{W: buf.W, H: buf.H, Pix: make([]float64, len(buf.Pix))}
	for off := 0; off < len(buf.Pix); off += 3 {
		r := float64(buf.Pix[off])
		g := float64(buf.Pix[off+1])
		b := float64(buf.Pix[off+2])
		for row := range 3 {
			k := m[row*3 : row*3+3]
			out.Pix[off+row] = float64(k[0]*r) + float64(k[1]*g) + float64(k[2]*b)
		}
	}
	return out, nil
}
