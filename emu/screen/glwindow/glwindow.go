// Package glwindow is the OpenGL frontend built on pixel. Importing it
// registers the "pixel" frontend.
package glwindow

import (
	"chyp8/emu/keypad"
	"chyp8/emu/screen"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"
)

func init() {
	screen.Register("pixel", func(o screen.Options) (screen.Frontend, error) {
		w, err := NewWindow(o)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}

// Window must be created and used from the function passed to pixelgl.Run.
type Window struct {
	*pixelgl.Window
	KeyMap map[pixelgl.Button]uint8
	imd    *imdraw.IMDraw
	scale  float64
}

// KeyMap maps the QWERTY block to the keypad, see keypad.Layout.
var KeyMap = map[pixelgl.Button]uint8{
	pixelgl.Key1: 0x1, pixelgl.Key2: 0x2, pixelgl.Key3: 0x3, pixelgl.Key4: 0xC,
	pixelgl.KeyQ: 0x4, pixelgl.KeyW: 0x5, pixelgl.KeyE: 0x6, pixelgl.KeyR: 0xD,
	pixelgl.KeyA: 0x7, pixelgl.KeyS: 0x8, pixelgl.KeyD: 0x9, pixelgl.KeyF: 0xE,
	pixelgl.KeyZ: 0xA, pixelgl.KeyX: 0x0, pixelgl.KeyC: 0xB, pixelgl.KeyV: 0xF,
}

// NewWindow opens the window.
func NewWindow(opts screen.Options) (*Window, error) {
	opts = opts.WithDefaults()
	scale := float64(opts.Scale)

	cfg := pixelgl.WindowConfig{
		Title:  opts.Title,
		Bounds: pixel.R(0, 0, screen.Width*scale, screen.Height*scale),
		VSync:  true,
	}

	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, err
	}

	return &Window{
		Window: win,
		KeyMap: KeyMap,
		imd:    imdraw.New(nil),
		scale:  scale,
	}, nil
}

// Render draws the frame. Pixel's origin is the bottom left corner so rows
// are flipped.
func (w *Window) Render(fb *screen.Framebuffer) error {
	w.Clear(colornames.Black)
	w.imd.Clear()
	w.imd.Color = colornames.White

	for y := 0; y < screen.Height; y++ {
		for x := 0; x < screen.Width; x++ {
			if !fb.Pixel(x, y) {
				continue
			}
			x0 := float64(x) * w.scale
			y0 := float64(screen.Height-1-y) * w.scale
			w.imd.Push(pixel.V(x0, y0), pixel.V(x0+w.scale, y0+w.scale))
			w.imd.Rectangle(0)
		}
	}

	w.imd.Draw(w.Window)
	w.Update()
	return nil
}

func (w *Window) Poll(keys *keypad.Keypad) bool {
	w.UpdateInput()
	if w.Closed() || w.Pressed(pixelgl.KeyEscape) {
		return false
	}
	for button, key := range w.KeyMap {
		keys.Set(key, w.Pressed(button))
	}
	return true
}

func (w *Window) Close() error {
	w.Destroy()
	return nil
}
