package screen

import (
	"strings"

	"chyp8/emu/cpu"
)

const (
	Width  = cpu.DisplayWidth
	Height = cpu.DisplayHeight
)

// Framebuffer is the display surface the CPU draws on. Drawing happens on a
// back buffer; Present copies it to the front buffer that frontends render.
type Framebuffer struct {
	back  [Width * Height]bool
	front [Width * Height]bool
	dirty bool
}

// NewFramebuffer returns a blank framebuffer.
func NewFramebuffer() *Framebuffer {
	return &Framebuffer{dirty: true}
}

// Clear turns every pixel off. The cleared frame is presented immediately.
func (fb *Framebuffer) Clear() {
	fb.back = [Width * Height]bool{}
	fb.Present()
}

// FlipPixel toggles the pixel at (x, y) and reports whether it was on.
// Coordinates outside the grid are ignored.
func (fb *Framebuffer) FlipPixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	i := y*Width + x
	was := fb.back[i]
	fb.back[i] = !was
	return was
}

// Present commits the back buffer.
func (fb *Framebuffer) Present() {
	fb.front = fb.back
	fb.dirty = true
}

// Pixel reports whether the presented pixel at (x, y) is on.
func (fb *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return fb.front[y*Width+x]
}

// Dirty reports whether a frame was presented since the last MarkClean.
func (fb *Framebuffer) Dirty() bool {
	return fb.dirty
}

// MarkClean is called by the host once the frame has been rendered.
func (fb *Framebuffer) MarkClean() {
	fb.dirty = false
}

// String draws the presented frame with '#' for lit pixels, one line per row.
func (fb *Framebuffer) String() string {
	var b strings.Builder
	b.Grow((Width + 1) * Height)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if fb.Pixel(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
