package heatmapper

import (
	"context"
	"fmt"
)

// Stage identifies the step an Observer is notified about.
type Stage int

const (
	StageBlend Stage = iota
	StageSaturate
)

func (s Stage) String() string {
	switch s {
	case StageSaturate:
		return "saturate"
	default:
		return "blend"
	}
}

// Observer receives intermediate buffers, e.g. for a live preview. It is
// called after every blend step (step = images folded so far) and once
// after saturation. buf must not be modified.
type Observer func(stage Stage, step int, buf *PixelBuffer)

// Loader decodes the image at path.
type Loader func(path string) (*PixelBuffer, error)

// DecodeError reports a Loader failure for one input.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Saturation factor. 0 => grayscale, 1 => unchanged, >1 => oversaturated.
	Saturation float64
	// Optional, may be nil.
	Observer Observer
}

func DefaultOptions() Options {
	return Options{
		Saturation: 1,
	}
}

// Result holds the output of a pipeline run.
type Result struct {
	Blended   *PixelBuffer // running average before saturation
	Saturated *RGB64       // unclamped saturation output
	Images    int
}

// Image returns the clamped 8-bit result, ready for encoding.
func (r *Result) Image() *PixelBuffer {
	return r.Saturated.Clamp()
}

// Run loads paths in the given order, folds them into a running average
// and saturates the composite. The order of paths is the blend order;
// Run does not sort. Images are decoded one at a time.
func Run(paths []string, load Loader, opts Options) (*Result, error) {
	return RunContext(context.Background(), paths, load, opts)
}

// RunContext is Run with cancellation. ctx is checked before every image
// is loaded and before saturation; a cancelled run returns no result.
func RunContext(ctx context.Context, paths []string, load Loader, opts Options) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input images: %w", ErrNullBuffer)
	}
	log := Logger()

	// 1. First image seeds the composite
	if err := interrupted(ctx, 0); err != nil {
		return nil, err
	}
	first, err := loadOne(load, paths[0])
	if err != nil {
		return nil, err
	}
	state, err := NewBlendState(first)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", paths[0], err)
	}
	log.Debug("loaded first image", "path", paths[0], "width", first.W, "height", first.H)

	// 2. Fold the rest, newest image weighted 1/i
	for _, path := range paths[1:] {
		if err := interrupted(ctx, state.Count); err != nil {
			return nil, err
		}
		next, err := loadOne(load, path)
		if err != nil {
			return nil, err
		}
		weight := state.Weight()
		state, err = state.step(next, opts.Observer)
		if err != nil {
			return nil, fmt.Errorf("blend %s: %w", path, err)
		}
		log.Debug("blended image", "path", path, "count", state.Count, "weight", weight)
	}

	// 3. Saturate
	if err := interrupted(ctx, state.Count); err != nil {
		return nil, err
	}
	saturated, err := Saturate(state.Composed, opts.Saturation)
	if err != nil {
		return nil, fmt.Errorf("saturate: %w", err)
	}
	res := &Result{
		Blended:   state.Composed,
		Saturated: saturated,
		Images:    state.Count,
	}
	if opts.Observer != nil {
		opts.Observer(StageSaturate, state.Count, res.Image())
	}

	log.Info("blend finished", "images", res.Images, "saturation", opts.Saturation,
		"width", state.Composed.W, "height", state.Composed.H)
	return res, nil
}

func loadOne(load Loader, path string) (*PixelBuffer, error) {
	buf, err := load(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if buf == nil {
		return nil, &DecodeError{Path: path, Err: ErrNullBuffer}
	}
	return buf, nil
}

func interrupted(ctx context.Context, done int) error {
	if ctx.Err() == nil {
		return nil
	}
	return fmt.Errorf("stopped after %d images: %w", done, context.Cause(ctx))
}
