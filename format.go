package gameaudio

import "fmt"

// SampleFormat identifies a PCM sample encoding. The only member currently
// supported is signed 16-bit interleaved, but the type keeps AudioFormat
// honest about a closed set rather than hard-coding an untyped int
// everywhere.
type SampleFormat int

const (
	// SignedInt16 is 16-bit signed PCM, samples interleaved by channel.
	SignedInt16 SampleFormat = iota
)

func (f SampleFormat) bytesPerSample() int {
	switch f {
	case SignedInt16:
		return 2
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case SignedInt16:
		return "s16"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// AudioFormat is the immutable (sample_format, channel_count, sample_rate_hz)
// triple every decoder, converter and the device stream agree on.
type AudioFormat struct {
	Sample     SampleFormat
	Channels   int
	SampleRate int
}

// DefaultMixFormat is adopted at Initialize unless the driver negotiates a
// different one.
var DefaultMixFormat = AudioFormat{Sample: SignedInt16, Channels: 2, SampleRate: 44100}

// BytesPerFrame returns bit_depth/8 * channel_count, or 0 for a malformed
// format (the mixer treats that as a no-op tick, never a panic).
func (f AudioFormat) BytesPerFrame() int {
	if f.Channels <= 0 {
		return 0
	}
	return f.Sample.bytesPerSample() * f.Channels
}

func (f AudioFormat) String() string {
	return fmt.Sprintf("%s@%dch@%dhz", f.Sample, f.Channels, f.SampleRate)
}
