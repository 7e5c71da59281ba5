package heatmapper

import (
	"fmt"
	"math"
)

// BlendPair mixes a and b channel by channel:
//
//	out = trunc(a*weight + b*(1-weight))
//
// weight is the share of a that is kept. The fractional part is dropped,
// never rounded, so repeated blending drifts downward.
func BlendPair(a, b *PixelBuffer, weight float64) (*PixelBuffer, error) {
	if a == nil || b == nil {
		return nil, ErrNullBuffer
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if !a.SameSize(b) {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, a.W, a.H, b.W, b.H)
	}
	if math.IsNaN(weight) || weight < 0 || weight > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}

	out := &PixelBuffer{W: a.W, H: a.H, Pix: make([]uint8, len(a.Pix))}
	rest := 1.0 - weight
	for i := range out.Pix {
		// Products are rounded before the sum so no platform fuses them.
		v := float64(float64(a.Pix[i])*weight) + float64(float64(b.Pix[i])*rest)
		out.Pix[i] = uint8(int(v))
	}
	return out, nil
}

// BlendState is the running composite of a blend fold. It is a value:
// Fold returns the next state and leaves the receiver as it was.
type BlendState struct {
	Composed *PixelBuffer
	Count    int // images folded into Composed so far
}

func NewBlendState(first *PixelBuffer) (BlendState, error) {
	if err := first.Validate(); err != nil {
		return BlendState{}, err
	}
	return BlendState{Composed: first, Count: 1}, nil
}

// Weight is the share the next folded image receives, 1/(Count+1).
func (s BlendState) Weight() float64 {
	return 1 / float64(s.Count+1)
}

func (s BlendState) Fold(next *PixelBuffer) (BlendState, error) {
	if s.Composed == nil || s.Count < 1 {
		return BlendState{}, ErrNullBuffer
	}
	composed, err := BlendPair(next, s.Composed, s.Weight())
	if err != nil {
		return BlendState{}, err
	}
	return BlendState{Composed: composed, Count: s.Count + 1}, nil
}

// BlendAll folds images in slice order into their running average. The
// result depends on the order: truncation accumulates differently when
// images are swapped. observe may be nil.
func BlendAll(images []*PixelBuffer, observe Observer) (*PixelBuffer, error) {
	if len(images) == 0 {
		return nil, ErrNullBuffer
	}
	for i, img := range images {
		if err := img.Validate(); err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
	}

	state, err := NewBlendState(images[0].Clone())
	if err != nil {
		return nil, err
	}
	for i, next := range images[1:] {
		state, err = state.step(next, observe)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
	}
	return state.Composed, nil
}

// step folds next and reports the new composite to observe. BlendAll and
// Run both advance the fold through here.
func (s BlendState) step(next *PixelBuffer, observe Observer) (BlendState, error) {
	folded, err := s.Fold(next)
	if err != nil {
		return BlendState{}, err
	}
	if observe != nil {
		observe(StageBlend, folded.Count, folded.Composed)
	}
	return folded, nil
}
