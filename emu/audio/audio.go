// Package audio plays a sample while the sound timer is running.
//
// No tone is synthesised: the sample is a user supplied mp3 or wav file that
// is looped while the sound timer is non-zero.
package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Beeper is switched on and off as the sound timer runs.
type Beeper interface {
	SetActive(on bool)
	Close() error
}

// Silent is the Beeper used when no sample is configured.
type Silent struct{}

func (Silent) SetActive(bool) {}
func (Silent) Close() error   { return nil }

// Speaker loops a decoded sample on the default audio device.
type Speaker struct {
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	active   bool
}

// Open decodes the sample at path and starts it paused.
func Open(path string) (*Speaker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	streamer, format, err := decode(f, filepath.Ext(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		streamer.Close()
		return nil, fmt.Errorf("initialising speaker: %w", err)
	}

	s := &Speaker{
		streamer: streamer,
		ctrl:     &beep.Ctrl{Streamer: beep.Loop(-1, streamer), Paused: true},
	}
	speaker.Play(s.ctrl)
	return s, nil
}

func decode(rc io.ReadCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".mp3":
		return mp3.Decode(rc)
	case ".wav":
		return wav.Decode(rc)
	}
	return nil, beep.Format{}, fmt.Errorf("unsupported sample format %q", ext)
}

// SetActive pauses or resumes the sample.
func (s *Speaker) SetActive(on bool) {
	if on == s.active {
		return
	}
	s.active = on

	speaker.Lock()
	s.ctrl.Paused = !on
	speaker.Unlock()
}

// Close stops playback and releases the sample.
func (s *Speaker) Close() error {
	speaker.Lock()
	s.ctrl.Streamer = nil
	speaker.Unlock()
	return s.streamer.Close()
}
