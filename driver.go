package gameaudio

// AudioDriver is the platform audio backend the service consumes
// §6). Stream and converter handles are opaque — the concrete driver
// implementation (e.g. the PortAudio-backed one in internal/paaudio) decides
// what they are; the service only ever threads them back through these
// methods. Keeping the handle type as `any` instead of a concrete struct is
// what lets the concrete driver package import this package (for
// AudioFormat, Logger, etc.) without this package importing it back.
type AudioDriver interface {
	// InitSubsystem performs idempotent per-process audio bring-up.
	InitSubsystem() error
	// OpenDeviceStream opens the default output stream for desired, and
	// returns the stream handle plus whatever format the backend actually
	// negotiated (which may differ from desired).
	OpenDeviceStream(desired AudioFormat) (stream any, actual AudioFormat, err error)
	// ResumeStream begins device consumption.
	ResumeStream(stream any) error
	// PauseStream suspends device consumption.
	PauseStream(stream any) error
	// DestroyStream releases the device stream. Must be safe to call
	// exactly once per successful OpenDeviceStream.
	DestroyStream(stream any) error
	// PushBytes enqueues buf onto the stream's playback queue.
	PushBytes(stream any, buf []byte) error
	// QueuedBytes returns the current queued byte count, or a negative
	// value if the query failed.
	QueuedBytes(stream any) (int, error)

	// CreateConverter opens an internal format bridge from src to dst.
	CreateConverter(src, dst AudioFormat) (any, error)
	// ConverterPush feeds src-format bytes into the converter.
	ConverterPush(stream any, buf []byte) error
	// ConverterPull drains up to len(buf) dst-format bytes.
	ConverterPull(stream any, buf []byte) (int, error)
	// ConverterAvailable reports bytes pullable without a further push.
	ConverterAvailable(stream any) (int, error)
	// ConverterFlush signals no more input; residual tail becomes pullable.
	ConverterFlush(stream any) error
	// ConverterDestroy releases a converter created by CreateConverter.
	ConverterDestroy(stream any) error

	// ShutdownSubsystem is the counterpart to InitSubsystem.
	ShutdownSubsystem() error
}
