// Package screen provides the framebuffer the CPU draws on and the frontends
// that show it and feed the keypad.
//
// Frontends that need native libraries live in their own packages and
// register themselves with Register, the same way database drivers do.
package screen

import (
	"fmt"
	"sort"
	"sync"

	"chyp8/emu/keypad"
)

// Frontend renders presented frames and reports host input.
type Frontend interface {
	// Render shows the presented frame of fb.
	Render(fb *Framebuffer) error
	// Poll updates keys from host input. It returns false when the user asked
	// to quit.
	Poll(keys *keypad.Keypad) bool
	Close() error
}

// Options shared by the windowed frontends.
type Options struct {
	Title string
	// Scale is the size of one CHIP-8 pixel in host pixels.
	Scale int
}

const (
	defaultTitle = "Chyp8"
	defaultScale = 10
)

// WithDefaults fills in unset fields.
func (o Options) WithDefaults() Options {
	if o.Title == "" {
		o.Title = defaultTitle
	}
	if o.Scale <= 0 {
		o.Scale = defaultScale
	}
	return o
}

// Constructor creates a frontend.
type Constructor func(Options) (Frontend, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Constructor{
		"terminal": func(Options) (Frontend, error) {
			t, err := NewTerminal()
			if err != nil {
				return nil, err
			}
			return t, nil
		},
		"headless": func(Options) (Frontend, error) {
			return &Headless{}, nil
		},
	}
)

// Register makes a frontend available to New. It panics on a duplicate name.
func Register(name string, create Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("screen: Register called twice for frontend " + name)
	}
	registry[name] = create
}

// Names returns the names accepted by New.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the named frontend.
func New(name string, opts Options) (Frontend, error) {
	registryMu.Lock()
	create, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown frontend %q, available: %v", name, Names())
	}
	return create(opts.WithDefaults())
}

// Headless renders nothing and never reports input.
type Headless struct {
	Frames int
}

func (h *Headless) Render(_ *Framebuffer) error {
	h.Frames++
	return nil
}

func (h *Headless) Poll(_ *keypad.Keypad) bool {
	return true
}

func (h *Headless) Close() error {
	return nil
}
