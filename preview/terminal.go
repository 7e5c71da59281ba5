// Package preview draws heat map buffers in a terminal while they are being
// built. It only displays what the pipeline hands it.
package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/setanarut/heatmapper"
)

// ErrInterrupted is the cancel cause when Ctrl-C or Esc is pressed.
var ErrInterrupted = errors.New("preview interrupted")

// Terminal renders buffers with upper half blocks: every cell shows two
// pixel rows, the top one as foreground and the bottom one as background.
// The last screen row holds a status line.
//
// The screen runs in raw mode, so Ctrl-C arrives as a key event rather
// than a signal. Terminal polls events in the background; Ctrl-C or Esc
// cancels Context with ErrInterrupted.
type Terminal struct {
	screen tcell.Screen
	// Delay is slept after each frame so intermediate steps stay visible.
	Delay time.Duration

	ctx       context.Context
	cancel    context.CancelCauseFunc
	pressed   chan struct{}
	closeOnce sync.Once
}

func NewTerminal(ctx context.Context) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(ctx, screen)
}

// NewTerminalWithScreen initialises screen and draws on it. The returned
// Terminal's Context is derived from ctx.
func NewTerminalWithScreen(ctx context.Context, screen tcell.Screen) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{
		screen:  screen,
		pressed: make(chan struct{}, 1),
	}
	t.ctx, t.cancel = context.WithCancelCause(ctx)
	go t.poll()
	return t, nil
}

// poll runs until the screen is finalised and PollEvent returns nil.
func (t *Terminal) poll() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		if key.Key() == tcell.KeyCtrlC || key.Key() == tcell.KeyEscape {
			t.cancel(ErrInterrupted)
			continue
		}
		select {
		case t.pressed <- struct{}{}:
		default:
		}
	}
}

// Context is cancelled with ErrInterrupted when the user quits the preview.
func (t *Terminal) Context() context.Context {
	return t.ctx
}

// Interrupted reports whether Ctrl-C or Esc was pressed.
func (t *Terminal) Interrupted() bool {
	return errors.Is(context.Cause(t.ctx), ErrInterrupted)
}

// Observe has the signature of heatmapper.Observer. Nothing is drawn once
// the context is done.
func (t *Terminal) Observe(stage heatmapper.Stage, step int, buf *heatmapper.PixelBuffer) {
	if buf.Validate() != nil || t.ctx.Err() != nil {
		return
	}
	t.screen.Clear()
	cols, h := t.screen.Size()
	rows := h
	if h >= 2 {
		rows = h - 1
	}
	cols, rows = fit(buf.W, buf.H, cols, rows)

	for cy := range rows {
		for cx := range cols {
			sx := cx * buf.W / cols
			top := cy * 2 * buf.H / (rows * 2)
			bottom := (cy*2 + 1) * buf.H / (rows * 2)
			style := tcell.StyleDefault.
				Foreground(cellColor(buf, sx, top)).
				Background(cellColor(buf, sx, bottom))
			t.screen.SetContent(cx, cy, '▀', nil, style)
		}
	}

	// A single row belongs to the image.
	if h >= 2 {
		t.status(h-1, fmt.Sprintf("%s #%d %dx%d", stage, step, buf.W, buf.H))
	}
	t.screen.Show()

	t.wait(t.Delay)
}

// Hold keeps the last frame on screen until a key is pressed, the context
// is done, or d elapses. d <= 0 waits for a key only.
func (t *Terminal) Hold(d time.Duration) {
	if t.ctx.Err() != nil {
		return
	}
	// Drop keys pressed while blending.
	select {
	case <-t.pressed:
	default:
	}
	if _, h := t.screen.Size(); h >= 2 {
		t.status(h-1, "done, press any key")
		t.screen.Show()
	}

	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-t.pressed:
	case <-t.ctx.Done():
	case <-timeout:
	}
}

// Close restores the terminal and stops the event poller. It is safe to
// call more than once.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		t.cancel(context.Canceled)
		t.screen.Fini()
	})
}

func (t *Terminal) wait(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-t.ctx.Done():
	}
}

func (t *Terminal) status(y int, text string) {
	cols, _ := t.screen.Size()
	for x := range cols {
		t.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
	for i, r := range text {
		t.screen.SetContent(i, y, r, nil, tcell.StyleDefault)
	}
}

func cellColor(buf *heatmapper.PixelBuffer, x, y int) tcell.Color {
	r, g, b := buf.RGB(x, y)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// fit returns the cell grid for a w x h image inside cols x rows cells,
// keeping the aspect ratio with two pixel rows per cell. The image is
// never scaled up.
func fit(w, h, cols, rows int) (int, int) {
	cols, rows = max(cols, 1), max(rows, 1)
	cellRows := (h + 1) / 2
	if w <= cols && cellRows <= rows {
		return w, cellRows
	}
	scale := min(float64(cols)/float64(w), float64(rows)/float64(cellRows))
	return max(1, int(float64(w)*scale)), max(1, int(float64(cellRows)*scale))
}
