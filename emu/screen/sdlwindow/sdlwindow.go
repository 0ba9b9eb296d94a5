// Package sdlwindow is the SDL2 frontend. Importing it registers the "sdl"
// frontend.
package sdlwindow

import (
	"fmt"
	"runtime"

	"chyp8/emu/keypad"
	"chyp8/emu/screen"

	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	screen.Register("sdl", func(o screen.Options) (screen.Frontend, error) {
		s, err := New(o)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Window must be used from the goroutine that created it. New locks that
// goroutine to its OS thread.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	scale    int32
}

// New opens an SDL window.
func New(opts screen.Options) (*Window, error) {
	opts = opts.WithDefaults()
	scale := int32(opts.Scale)

	runtime.LockOSThread()
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("failed to initialise SDL: %w", err)
	}

	window, err := sdl.CreateWindow(opts.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		screen.Width*scale, screen.Height*scale, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		_ = window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return &Window{
		window:   window,
		renderer: renderer,
		scale:    scale,
	}, nil
}

func (w *Window) Render(fb *screen.Framebuffer) error {
	if err := w.renderer.SetDrawColor(0, 0, 0, 0xff); err != nil {
		return err
	}
	if err := w.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear renderer: %w", err)
	}
	if err := w.renderer.SetDrawColor(0xff, 0xff, 0xff, 0xff); err != nil {
		return err
	}

	for y := 0; y < screen.Height; y++ {
		for x := 0; x < screen.Width; x++ {
			if !fb.Pixel(x, y) {
				continue
			}
			rect := sdl.Rect{X: int32(x) * w.scale, Y: int32(y) * w.scale, W: w.scale, H: w.scale}
			if err := w.renderer.FillRect(&rect); err != nil {
				return fmt.Errorf("failed to draw pixel: %w", err)
			}
		}
	}

	w.renderer.Present()
	return nil
}

func (w *Window) Poll(keys *keypad.Keypad) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.KeyboardEvent:
			if t.Keysym.Sym == sdl.K_ESCAPE {
				return false
			}
			// keycodes of printable keys are their lower case characters
			if key, ok := keypad.Lookup(rune(t.Keysym.Sym)); ok {
				keys.Set(key, t.Type == sdl.KEYDOWN)
			}
		}
	}
	return true
}

func (w *Window) Close() error {
	err := w.renderer.Destroy()
	if werr := w.window.Destroy(); err == nil {
		err = werr
	}
	sdl.Quit()
	runtime.UnlockOSThread()
	return err
}
