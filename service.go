package gameaudio

import "sync"

// defaultMixFrames is the default number of frames produced per mixer tick.
const defaultMixFrames = 1024

// DecodeChunkBytes bounds how much compressed-then-decoded PCM a single
// decoder.ReadChunk call may produce. It must be at least one source frame;
// 8KiB comfortably covers a stereo S16 chunk at typical rates, matching the
// chunk scale used by the Vorbis decoder this package wraps. It is exported
// so a driver's per-voice converter can size its staging buffer against the
// largest single Push it will ever see from this service.
const DecodeChunkBytes = 8192

// Service is the public façade. One exclusive mutex guards every piece of
// mutable state: the voice table, the mix buffers, the volume, the
// initialization flag and the device stream handle.
type Service struct {
	mu sync.Mutex

	driver     AudioDriver
	newDecoder DecoderFactory
	logger     Logger
	metrics    *Metrics

	desiredFormat AudioFormat
	mixFrames     int

	initialized bool
	device      any
	mixFormat   AudioFormat
	volume      float64

	table voiceTable

	mixAccum  []int32
	decodeBuf []byte
	voiceBuf  []byte
	outBuf    []byte
}

// Option configures a Service at construction time. There is no file, env
// var or schema behind these — just a handful of explicit tunables.
type Option func(*Service)

// WithMixFrames overrides MIX_FRAMES (default 1024).
func WithMixFrames(frames int) Option {
	return func(s *Service) {
		if frames > 0 {
			s.mixFrames = frames
		}
	}
}

// WithDesiredFormat overrides the format requested from OpenDeviceStream.
// The device may still negotiate a different one.
func WithDesiredFormat(f AudioFormat) Option {
	return func(s *Service) { s.desiredFormat = f }
}

// WithLogger attaches a Logger. Omit this option (or pass nil) to run
// without logging.
func WithLogger(l Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics attaches a Metrics sink. Omit this option (or pass nil) to run
// without metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs an uninitialized Service. driver and newDecoder are
// required; the remaining dependencies are optional via Option.
func NewService(driver AudioDriver, newDecoder DecoderFactory, opts ...Option) *Service {
	s := &Service{
		driver:        driver,
		newDecoder:    newDecoder,
		desiredFormat: DefaultMixFormat,
		mixFrames:     defaultMixFrames,
		volume:        1.0,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize brings up the audio subsystem and opens the device stream. On
// any failure, whatever was already brought up is torn down before
// returning — no partial initialization survives.
func (s *Service) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return ErrAlreadyInitialized
	}

	if err := s.driver.InitSubsystem(); err != nil {
		return initError("subsystem init", err)
	}

	device, actual, err := s.driver.OpenDeviceStream(s.desiredFormat)
	if err != nil {
		s.driver.ShutdownSubsystem()
		return initError("open device stream", err)
	}

	if err := s.driver.ResumeStream(device); err != nil {
		s.driver.DestroyStream(device)
		s.driver.ShutdownSubsystem()
		return initError("resume stream", err)
	}

	s.device = device
	s.mixFormat = actual
	s.initialized = true
	s.allocateBuffers()
	logInfo(s.logger, "initialized, mix format %s", actual)
	return nil
}

func (s *Service) allocateBuffers() {
	bpf := s.mixFormat.BytesPerFrame()
	s.mixAccum = make([]int32, s.mixFrames*s.mixFormat.Channels)
	s.voiceBuf = make([]byte, s.mixFrames*bpf)
	s.outBuf = make([]byte, s.mixFrames*bpf)
	if len(s.decodeBuf) == 0 {
		s.decodeBuf = make([]byte, DecodeChunkBytes)
	}
}

// Shutdown pauses and destroys the device stream, destroys all voices and
// releases the subsystem. It never fails; calling it more than once, or
// before Initialize, is a no-op.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	s.table.clearAll()
	if err := s.driver.PauseStream(s.device); err != nil {
		logError(s.logger, "pause stream during shutdown: %v", err)
	}
	if err := s.driver.DestroyStream(s.device); err != nil {
		logError(s.logger, "destroy stream during shutdown: %v", err)
	}
	if err := s.driver.ShutdownSubsystem(); err != nil {
		logError(s.logger, "shutdown subsystem: %v", err)
	}
	s.device = nil
	s.initialized = false
	logInfo(s.logger, "shutdown complete")
}

// PlayBackground loads path as the single background voice, replacing and
// destroying any previous one. Nothing is installed if loading fails.
func (s *Service) PlayBackground(path string, loop bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	v, err := newVoice(path, loop, s.newDecoder(), s.driver, s.mixFormat)
	if err != nil {
		return loadError(path, err)
	}
	s.table.replaceBackground(v)
	s.metrics.voiceCreated()
	logInfo(s.logger, "background voice loaded: %s (loop=%v)", path, loop)
	return nil
}

// PlayEffect loads path and appends it to the effect voices.
func (s *Service) PlayEffect(path string, loop bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	v, err := newVoice(path, loop, s.newDecoder(), s.driver, s.mixFormat)
	if err != nil {
		return loadError(path, err)
	}
	s.table.appendEffect(v)
	s.metrics.voiceCreated()
	logInfo(s.logger, "effect voice loaded: %s (loop=%v)", path, loop)
	return nil
}

// StopBackground destroys the background voice, if any. No-op if
// uninitialized or no background voice is playing.
func (s *Service) StopBackground() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	s.table.clearBackground()
}

// StopAll destroys every voice, background and effects alike.
func (s *Service) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	s.table.clearAll()
}

// SetVolume clamps v to [0, 1] and installs it as the master volume.
func (s *Service) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	s.volume = v
}

// GetVolume returns the current master volume, always within [0, 1].
func (s *Service) GetVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// IsBackgroundPlaying reports whether a background voice exists and has not
// finished.
func (s *Service) IsBackgroundPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.background != nil && !s.table.background.finished
}
