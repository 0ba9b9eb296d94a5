package screen

import (
	"time"

	"chyp8/emu/keypad"

	"github.com/gdamore/tcell"
)

// Terminal draws the display with half block characters, two pixel rows per
// text row. Terminals only report key presses, so a pressed key is held for
// keypad.RepeatDuration unless it repeats.
type Terminal struct {
	screen tcell.Screen
	events chan tcell.Event
	done   chan struct{}
	held   [keypad.NumKeys]time.Time
	now    func() time.Time
	style  tcell.Style
}

// NewTerminal takes over the controlling terminal.
func NewTerminal() (*Terminal, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newTerminal(s)
}

func newTerminal(s tcell.Screen) (*Terminal, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.HideCursor()
	s.Clear()

	t := &Terminal{
		screen: s,
		events: make(chan tcell.Event, 64),
		done:   make(chan struct{}),
		now:    time.Now,
		style:  tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack),
	}
	go t.readEvents()
	return t, nil
}

// readEvents forwards tcell events to the emulation loop, PollEvent blocks.
func (t *Terminal) readEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.done:
			return
		}
	}
}

func (t *Terminal) Render(fb *Framebuffer) error {
	for y := 0; y < Height; y += 2 {
		for x := 0; x < Width; x++ {
			t.screen.SetContent(x, y/2, halfBlock(fb.Pixel(x, y), fb.Pixel(x, y+1)), nil, t.style)
		}
	}
	t.screen.Show()
	return nil
}

func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}
	return ' '
}

func (t *Terminal) Poll(keys *keypad.Keypad) bool {
	now := t.now()

drain:
	for {
		select {
		case ev := <-t.events:
			if !t.handle(ev, keys, now) {
				return false
			}
		default:
			break drain
		}
	}

	for key, until := range t.held {
		if !until.IsZero() && !now.Before(until) {
			keys.Release(uint8(key))
			t.held[key] = time.Time{}
		}
	}
	return true
}

func (t *Terminal) handle(ev tcell.Event, keys *keypad.Keypad, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			if key, ok := keypad.Lookup(ev.Rune()); ok {
				keys.Press(key)
				t.held[key] = now.Add(keypad.RepeatDuration)
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *Terminal) Close() error {
	close(t.done)
	t.screen.Fini()
	return nil
}
