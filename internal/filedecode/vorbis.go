// Package filedecode provides gameaudio.Decoder backends for the file
// formats background and effect voices are loaded from: a streaming Vorbis
// backend for compressed background/effect tracks, and a WAV backend for
// uncompressed short effects.
package filedecode

import (
	"fmt"
	"os"

	"github.com/xlab/vorbis-go/decoder"

	"github.com/johndoe6345789/gameaudio"
)

// samplesPerChannel is the frame size the vorbis-go decoder batches samples
// into before handing them to SamplesOut. 1024 matches MIX_FRAMES so a
// single decoded frame typically satisfies one mixer tick's worth of a
// voice's conversion input.
const samplesPerChannel = 1024

// vorbisDecoder adapts github.com/xlab/vorbis-go/decoder's asynchronous
// channel-based API to gameaudio.Decoder's synchronous ReadChunk contract.
// The underlying decoder pumps its decode loop in a goroutine (Decode must
// run concurrently with SamplesOut being drained); ReadChunk blocks on that
// channel exactly long enough to get the next frame, which is bounded by
// however fast the decode goroutine runs ahead of playback.
type vorbisDecoder struct {
	path     string
	file     *os.File
	dec      *decoder.Decoder
	channels int
	leftover []byte
	failed   bool
}

// NewVorbisDecoder returns an unopened Decoder for Ogg Vorbis files.
func NewVorbisDecoder() gameaudio.Decoder {
	return &vorbisDecoder{}
}

func (v *vorbisDecoder) Open(path string) (gameaudio.AudioFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return gameaudio.AudioFormat{}, err
	}
	dec, err := decoder.New(f, samplesPerChannel)
	if err != nil {
		f.Close()
		return gameaudio.AudioFormat{}, fmt.Errorf("vorbis open %s: %w", path, err)
	}
	info := dec.Info()
	dec.SetErrorHandler(func(err error) { v.failed = true })

	v.path = path
	v.file = f
	v.dec = dec
	v.channels = int(info.Channels)
	v.leftover = nil

	go dec.Decode()

	return gameaudio.AudioFormat{
		Sample:     gameaudio.SignedInt16,
		Channels:   v.channels,
		SampleRate: int(info.SampleRate),
	}, nil
}

func (v *vorbisDecoder) ReadChunk(buf []byte) int {
	if len(v.leftover) > 0 {
		n := copy(buf, v.leftover)
		v.leftover = v.leftover[n:]
		return n
	}
	frame, ok := <-v.dec.SamplesOut()
	if !ok {
		if v.failed {
			return -1
		}
		return 0
	}
	bytes := floatFrameToInt16(frame, v.channels)
	n := copy(buf, bytes)
	if n < len(bytes) {
		v.leftover = bytes[n:]
	}
	return n
}

// SeekToStart rewinds the source. vorbis-go's decoder exposes no native
// seek (unlike libvorbisfile's ov_pcm_seek), so a loop restart closes the
// running decoder and goroutine and reconstructs a fresh one against the
// same file handle rewound to byte 0.
func (v *vorbisDecoder) SeekToStart() error {
	if v.dec != nil {
		v.dec.Close()
	}
	if _, err := v.file.Seek(0, 0); err != nil {
		return fmt.Errorf("vorbis seek %s: %w", v.path, err)
	}
	dec, err := decoder.New(v.file, samplesPerChannel)
	if err != nil {
		return fmt.Errorf("vorbis reopen %s: %w", v.path, err)
	}
	dec.SetErrorHandler(func(err error) { v.failed = true })
	v.dec = dec
	v.leftover = nil
	v.failed = false
	go dec.Decode()
	return nil
}

func (v *vorbisDecoder) Close() error {
	if v.dec != nil {
		v.dec.Close()
		v.dec = nil
	}
	if v.file == nil {
		return nil
	}
	err := v.file.Close()
	v.file = nil
	return err
}

// floatFrameToInt16 converts one vorbis-go frame ([samplesPerChannel][channels]float32,
// -1..1 range) to interleaved little-endian signed-16 PCM bytes.
func floatFrameToInt16(frame [][]float32, channels int) []byte {
	out := make([]byte, 0, len(frame)*channels*2)
	for _, sample := range frame {
		for ch := 0; ch < channels && ch < len(sample); ch++ {
			f := sample[ch]
			switch {
			case f > 1:
				f = 1
			case f < -1:
				f = -1
			}
			s := int16(f * 32767)
			out = append(out, byte(uint16(s)), byte(uint16(s)>>8))
		}
	}
	return out
}
