package filedecode

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/johndoe6345789/gameaudio"
)

// dispatchDecoder picks a concrete Decoder by file extension on Open, then
// forwards every subsequent call to it. This is the gameaudio.DecoderFactory
// product: one dispatchDecoder per voice, decided once at Open time.
type dispatchDecoder struct {
	inner gameaudio.Decoder
}

// NewDecoder returns a gameaudio.DecoderFactory that dispatches by file
// extension: ".ogg" to the Vorbis backend, ".wav" to the WAV backend.
func NewDecoder() gameaudio.DecoderFactory {
	return func() gameaudio.Decoder {
		return &dispatchDecoder{}
	}
}

func (d *dispatchDecoder) Open(path string) (gameaudio.AudioFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		d.inner = NewVorbisDecoder()
	case ".wav":
		d.inner = NewWavDecoder()
	default:
		return gameaudio.AudioFormat{}, fmt.Errorf("filedecode: unsupported extension for %s", path)
	}
	return d.inner.Open(path)
}

func (d *dispatchDecoder) ReadChunk(buf []byte) int {
	if d.inner == nil {
		return -1
	}
	return d.inner.ReadChunk(buf)
}

func (d *dispatchDecoder) SeekToStart() error {
	if d.inner == nil {
		return fmt.Errorf("filedecode: seek before open")
	}
	return d.inner.SeekToStart()
}

func (d *dispatchDecoder) Close() error {
	if d.inner == nil {
		return nil
	}
	return d.inner.Close()
}
