package gameaudio

import (
	"errors"
	"sync"

	"github.com/johndoe6345789/gameaudio/internal/convert"
)

// fakeDriver is a hand-written AudioDriver fake: small interfaces backed by
// a mock struct, no mocking framework. It counts every lifecycle call so
// tests can assert on destroy-exactly-once and idempotence properties, and
// delegates actual format conversion to the real internal/convert.Converter
// so voice/mixer tests exercise real resampling code rather than a second,
// separately-written fake implementation of it.
type fakeDriver struct {
	mu sync.Mutex

	initCalls, shutdownCalls   int
	openCalls, destroyCalls    int
	resumeCalls, pauseCalls    int
	pushCalls                  int
	pushedBytes                [][]byte
	converterDestroys          int

	openErr      error
	queued       int
	queuedErr    error
	pushErr      error
	resumeErr    error

	devices map[any]bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{devices: make(map[any]bool)}
}

func (f *fakeDriver) InitSubsystem() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	return nil
}

func (f *fakeDriver) ShutdownSubsystem() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdownCalls++
	return nil
}

func (f *fakeDriver) OpenDeviceStream(desired AudioFormat) (any, AudioFormat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls++
	if f.openErr != nil {
		return nil, AudioFormat{}, f.openErr
	}
	h := new(int)
	f.devices[h] = true
	return h, desired, nil
}

func (f *fakeDriver) ResumeStream(stream any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeCalls++
	return f.resumeErr
}

func (f *fakeDriver) PauseStream(stream any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauseCalls++
	return nil
}

func (f *fakeDriver) DestroyStream(stream any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyCalls++
	delete(f.devices, stream)
	return nil
}

func (f *fakeDriver) PushBytes(stream any, buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushCalls++
	if f.pushErr != nil {
		return f.pushErr
	}
	cp := make([]byte, len(buf))
	copy(cp, buf)
	f.pushedBytes = append(f.pushedBytes, cp)
	f.queued += len(buf)
	return nil
}

func (f *fakeDriver) QueuedBytes(stream any) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queuedErr != nil {
		return -1, f.queuedErr
	}
	return f.queued, nil
}

func (f *fakeDriver) CreateConverter(src, dst AudioFormat) (any, error) {
	return convert.New(src.Channels, src.SampleRate, dst.Channels, dst.SampleRate, DecodeChunkBytes), nil
}

func (f *fakeDriver) ConverterPush(stream any, buf []byte) error {
	return stream.(*convert.Converter).Push(buf)
}

func (f *fakeDriver) ConverterPull(stream any, buf []byte) (int, error) {
	return stream.(*convert.Converter).Pull(buf)
}

func (f *fakeDriver) ConverterAvailable(stream any) (int, error) {
	return stream.(*convert.Converter).Available(), nil
}

func (f *fakeDriver) ConverterFlush(stream any) error {
	return stream.(*convert.Converter).Flush()
}

func (f *fakeDriver) ConverterDestroy(stream any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.converterDestroys++
	stream.(*convert.Converter).Close()
	return nil
}

// fakeDecoder replays a fixed block of pre-encoded source-format PCM,
// optionally looping, the way mockPAStream replays canned samples.
type fakeDecoder struct {
	format  AudioFormat
	data    []byte
	pos     int
	seeks   int
	closed  bool
	openErr error
	failAt  int // if >0, ReadChunk returns -1 once pos reaches this offset
}

func (d *fakeDecoder) Open(path string) (AudioFormat, error) {
	if d.openErr != nil {
		return AudioFormat{}, d.openErr
	}
	return d.format, nil
}

func (d *fakeDecoder) ReadChunk(buf []byte) int {
	if d.failAt > 0 && d.pos >= d.failAt {
		return -1
	}
	if d.pos >= len(d.data) {
		return 0
	}
	n := copy(buf, d.data[d.pos:])
	d.pos += n
	return n
}

func (d *fakeDecoder) SeekToStart() error {
	d.pos = 0
	d.seeks++
	return nil
}

func (d *fakeDecoder) Close() error {
	d.closed = true
	return nil
}

var errFakeOpen = errors.New("fake open failure")
