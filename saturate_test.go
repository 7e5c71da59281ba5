package heatmapper

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const eps = 1e-9

func TestLumaWeightsSumToOne(t *testing.T) {
	if sum := LumaRed + LumaGreen + LumaBlue; math.Abs(sum-1) > eps {
		t.Errorf("luma weights sum to %v", sum)
	}
}

func TestSaturationMatrixIdentity(t *testing.T) {
	id := mat.NewDiagDense(3, []float64{1, 1, 1})
	if m := SaturationMatrix(1); !mat.EqualApprox(m, id, eps) {
		t.Errorf("s=1 matrix is not the identity:\n%v", mat.Formatted(m))
	}
}

func TestSaturationMatrixCoefficients(t *testing.T) {
	s := 0.25
	m := SaturationMatrix(s)
	want := mat.NewDense(3, 3, []float64{
		0.75*0.3086 + 0.25, 0.75 * 0.6094, 0.75 * 0.0820,
		0.75 * 0.3086, 0.75*0.6094 + 0.25, 0.75 * 0.0820,
		0.75 * 0.3086, 0.75 * 0.6094, 0.75*0.0820 + 0.25,
	})
	if !mat.EqualApprox(m, want, eps) {
		t.Errorf("got\n%v\nwant\n%v", mat.Formatted(m), mat.Formatted(want))
	}

	// Rows sum to 1 for any s, so gray stays gray.
	for i := range 3 {
		if sum := mat.Sum(m.RowView(i)); math.Abs(sum-1) > eps {
			t.Errorf("row %d sums to %v", i, sum)
		}
	}
}

func TestSaturateIdentity(t *testing.T) {
	buf, _ := NewPixelBuffer(2, 2)
	copy(buf.Pix, []uint8{0, 1, 2, 50, 100, 150, 200, 250, 255, 7, 77, 177})

	out, err := Saturate(buf, 1)
	if err != nil {
		t.Fatalf("Saturate: %v", err)
	}
	for i, v := range out.Pix {
		if math.Abs(v-float64(buf.Pix[i])) > eps {
			t.Errorf("sample %d: got %v, want %d", i, v, buf.Pix[i])
		}
	}
}

func TestSaturateGrayscale(t *testing.T) {
	buf, _ := NewPixelBuffer(2, 1)
	buf.SetRGB(0, 0, 200, 100, 50)
	buf.SetRGB(1, 0, 0, 255, 0)

	out, err := Saturate(buf, 0)
	if err != nil {
		t.Fatalf("Saturate: %v", err)
	}
	for x := range 2 {
		r0, g0, b0 := buf.RGB(x, 0)
		luma := 0.3086*float64(r0) + 0.6094*float64(g0) + 0.0820*float64(b0)
		r, g, b := out.At(x, 0)
		for _, v := range []float64{r, g, b} {
			if math.Abs(v-luma) > eps {
				t.Errorf("pixel %d: got (%v,%v,%v), want %v in every channel", x, r, g, b, luma)
				break
			}
		}
	}
}

func TestSaturateExtremeFactorIsClamped(t *testing.T) {
	buf, _ := NewPixelBuffer(1, 1)
	buf.SetRGB(0, 0, 255, 0, 0)

	out, err := Saturate(buf, 3)
	if err != nil {
		t.Fatalf("Saturate: %v", err)
	}
	r, g, b := out.At(0, 0)
	// (1-3)*0.3086*255 + 3*255 and -2*0.3086*255
	if math.Abs(r-607.614) > 1e-6 || math.Abs(g+157.386) > 1e-6 || math.Abs(b+157.386) > 1e-6 {
		t.Errorf("unclamped = (%v,%v,%v), want (607.614,-157.386,-157.386)", r, g, b)
	}

	clamped := out.Clamp()
	if cr, cg, cb := clamped.RGB(0, 0); cr != 255 || cg != 0 || cb != 0 {
		t.Errorf("clamped = (%d,%d,%d), want (255,0,0)", cr, cg, cb)
	}
}

func TestClampTruncatesAndHandlesNaN(t *testing.T) {
	img := &RGB64{W: 1, H: 2, Pix: []float64{12.99, -0.5, 255.7, math.NaN(), 0.999, 254.5}}
	got := img.Clamp().Pix
	want := []uint8{12, 0, 255, 0, 0, 254}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSaturateErrors(t *testing.T) {
	if _, err := Saturate(nil, 1); !errors.Is(err, ErrNullBuffer) {
		t.Errorf("nil: err = %v, want ErrNullBuffer", err)
	}
	bad := &PixelBuffer{W: 2, H: 2, Pix: make([]uint8, 3)}
	if _, err := Saturate(bad, 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("short pix: err = %v, want ErrInvalidSize", err)
	}
}
