package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pcmWAV builds a mono 16 bit PCM wav file holding samples.
func pcmWAV(sampleRate uint32, samples []int16) []byte {
	var data bytes.Buffer
	for _, s := range samples {
		_ = binary.Write(&data, binary.LittleEndian, s)
	}

	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+data.Len()))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&b, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&b, binary.LittleEndian, sampleRate)
	_ = binary.Write(&b, binary.LittleEndian, sampleRate*2)
	_ = binary.Write(&b, binary.LittleEndian, uint16(2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(data.Len()))
	b.Write(data.Bytes())
	return b.Bytes()
}

func TestDecodeWAV(t *testing.T) {
	raw := pcmWAV(8000, []int16{0, 1000, -1000, 0})
	streamer, format, err := decode(io.NopCloser(bytes.NewReader(raw)), ".WAV")
	require.NoError(t, err)
	defer streamer.Close()

	assert.Equal(t, 8000, int(format.SampleRate))
	assert.Equal(t, 1, format.NumChannels)
	assert.Equal(t, 4, streamer.Len())
}

func TestDecodeUnsupported(t *testing.T) {
	_, _, err := decode(io.NopCloser(bytes.NewReader(nil)), ".ogg")
	assert.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("does-not-exist.mp3")
	assert.Error(t, err)
}

func TestSilent(t *testing.T) {
	var b Beeper = Silent{}
	b.SetActive(true)
	assert.NoError(t, b.Close())
}
