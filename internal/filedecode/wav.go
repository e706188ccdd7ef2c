package filedecode

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/johndoe6345789/gameaudio"
)

// wavChunkFrames bounds how many frames a single PCMBuffer call decodes.
const wavChunkFrames = 2048

// wavDecoder adapts github.com/go-audio/wav's chunked PCMBuffer reads to
// gameaudio.Decoder. Short, uncompressed UI/game effects are frequently
// shipped as WAV rather than streamed-compressed audio, so this backend
// supplements the Vorbis one as a second source format.
type wavDecoder struct {
	path     string
	file     *os.File
	dec      *wav.Decoder
	channels int
	bitDepth int
	buf      *audio.IntBuffer
	leftover []byte
}

// NewWavDecoder returns an unopened Decoder for uncompressed WAV files.
func NewWavDecoder() gameaudio.Decoder {
	return &wavDecoder{}
}

func (w *wavDecoder) Open(path string) (gameaudio.AudioFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return gameaudio.AudioFormat{}, err
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return gameaudio.AudioFormat{}, fmt.Errorf("wav open %s: %w", path, errors.New("not a valid WAV file"))
	}
	dec.ReadInfo()

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)

	w.path = path
	w.file = f
	w.dec = dec
	w.channels = channels
	w.bitDepth = bitDepth
	w.buf = &audio.IntBuffer{
		Data:   make([]int, wavChunkFrames*channels),
		Format: &audio.Format{SampleRate: int(dec.SampleRate), NumChannels: channels},
	}
	w.leftover = nil

	return gameaudio.AudioFormat{
		Sample:     gameaudio.SignedInt16,
		Channels:   channels,
		SampleRate: int(dec.SampleRate),
	}, nil
}

func (w *wavDecoder) ReadChunk(buf []byte) int {
	if len(w.leftover) > 0 {
		n := copy(buf, w.leftover)
		w.leftover = w.leftover[n:]
		return n
	}
	n, err := w.dec.PCMBuffer(w.buf)
	if err != nil {
		return -1
	}
	if n == 0 {
		return 0
	}
	pcm := intsToInt16Bytes(w.buf.Data[:n], w.bitDepth)
	written := copy(buf, pcm)
	if written < len(pcm) {
		w.leftover = pcm[written:]
	}
	return written
}

func (w *wavDecoder) SeekToStart() error {
	if _, err := w.file.Seek(0, 0); err != nil {
		return fmt.Errorf("wav seek %s: %w", w.path, err)
	}
	dec := wav.NewDecoder(w.file)
	if !dec.IsValidFile() {
		return fmt.Errorf("wav reopen %s: %w", w.path, errors.New("not a valid WAV file"))
	}
	dec.ReadInfo()
	w.dec = dec
	w.leftover = nil
	return nil
}

func (w *wavDecoder) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// intsToInt16Bytes converts go-audio's per-sample int values (sign-extended
// to the file's native bit depth) to interleaved little-endian signed-16
// PCM, rescaling bit depths above 16 down into signed-16 range.
func intsToInt16Bytes(data []int, bitDepth int) []byte {
	out := make([]byte, len(data)*2)
	shift := uint(0)
	switch {
	case bitDepth > 16:
		shift = uint(bitDepth - 16)
	}
	for i, v := range data {
		s := v >> shift
		switch {
		case s > 32767:
			s = 32767
		case s < -32768:
			s = -32768
		}
		out[2*i] = byte(uint16(int16(s)))
		out[2*i+1] = byte(uint16(int16(s)) >> 8)
	}
	return out
}
