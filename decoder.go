package gameaudio

// Decoder pulls compressed frames from a file and produces raw PCM in the
// file's native source format. Any file-format library may provide one;
// this module ships Vorbis and WAV backends under internal/filedecode.
type Decoder interface {
	// Open opens path and returns the source format it decodes to.
	Open(path string) (AudioFormat, error)
	// ReadChunk writes decoded PCM into buf and returns the byte count
	// written. 0 means end-of-stream; a negative value means decode
	// error.
	ReadChunk(buf []byte) int
	// SeekToStart rewinds the source for a loop restart.
	SeekToStart() error
	// Close releases file resources. Idempotent.
	Close() error
}

// DecoderFactory returns a fresh, unopened Decoder instance. The service
// calls Open on it immediately after construction.
type DecoderFactory func() Decoder
