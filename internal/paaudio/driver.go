// Package paaudio is the concrete gameaudio.AudioDriver backed by
// PortAudio, plus a ring-buffer-backed queue and internal/convert that
// together give both the device and the per-voice format converters the
// push/pull byte-queue semantics gameaudio.AudioDriver requires.
package paaudio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/smallnest/ringbuffer"

	"github.com/johndoe6345789/gameaudio"
	"github.com/johndoe6345789/gameaudio/internal/convert"
)

// framesPerBuffer is the PortAudio callback/blocking granularity. It
// matches the service's default mix frame count so one Tick corresponds to
// roughly one PortAudio buffer.
const framesPerBuffer = 1024

// queueCapacityFactor sizes the device ring buffer as a multiple of one
// tick's worth of bytes, giving PushBytes headroom beyond the mixer's own
// queue_limit back-pressure check.
const queueCapacityFactor = 4

// Driver is a gameaudio.AudioDriver. A zero Driver is ready to use.
type Driver struct {
	mu          sync.Mutex
	outputIndex int // -1 selects the default output device
}

// New returns a Driver that opens the system default output device.
func New() *Driver {
	return &Driver{outputIndex: -1}
}

func (d *Driver) InitSubsystem() error {
	return portaudio.Initialize()
}

func (d *Driver) ShutdownSubsystem() error {
	return portaudio.Terminate()
}

// deviceStream owns one PortAudio output stream plus the ring buffer that
// adapts PortAudio's blocking Write into the push/pull byte-queue shape
// gameaudio.AudioDriver requires.
type deviceStream struct {
	stream *portaudio.Stream
	out    []int16
	ring   *ringbuffer.RingBuffer
	format gameaudio.AudioFormat

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func (d *Driver) OpenDeviceStream(desired gameaudio.AudioFormat) (any, gameaudio.AudioFormat, error) {
	outDev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, gameaudio.AudioFormat{}, fmt.Errorf("paaudio: default output device: %w", err)
	}

	out := make([]int16, framesPerBuffer*desired.Channels)
	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   outDev,
			Channels: desired.Channels,
			Latency:  outDev.DefaultLowOutputLatency,
		},
		SampleRate:      float64(desired.SampleRate),
		FramesPerBuffer: framesPerBuffer,
	}
	stream, err := portaudio.OpenStream(params, out)
	if err != nil {
		return nil, gameaudio.AudioFormat{}, fmt.Errorf("paaudio: open stream: %w", err)
	}

	bpf := desired.BytesPerFrame()
	ds := &deviceStream{
		stream: stream,
		out:    out,
		ring:   ringbuffer.New(bpf * framesPerBuffer * queueCapacityFactor),
		format: desired,
	}
	// PortAudio's blocking API fixes the format to exactly what was
	// requested; there is no SDL-style renegotiation to a different
	// backend format, so actual == desired for this driver.
	return ds, desired, nil
}

func (d *Driver) ResumeStream(stream any) error {
	ds := stream.(*deviceStream)
	if err := ds.stream.Start(); err != nil {
		return err
	}
	ds.stopCh = make(chan struct{})
	ds.wg.Add(1)
	go ds.writeLoop()
	return nil
}

func (d *Driver) PauseStream(stream any) error {
	ds := stream.(*deviceStream)
	if ds.stopCh != nil {
		close(ds.stopCh)
		ds.wg.Wait()
		ds.stopCh = nil
	}
	return ds.stream.Stop()
}

func (d *Driver) DestroyStream(stream any) error {
	ds := stream.(*deviceStream)
	return ds.stream.Close()
}

func (d *Driver) PushBytes(stream any, buf []byte) error {
	ds := stream.(*deviceStream)
	_, err := ds.ring.Write(buf)
	return err
}

func (d *Driver) QueuedBytes(stream any) (int, error) {
	ds := stream.(*deviceStream)
	return ds.ring.Length(), nil
}

// writeLoop pulls framesPerBuffer frames from the ring buffer at a time,
// zero-filling any shortfall (an underrun plays silence rather than stale
// data), and blocks in stream.Write like any PortAudio blocking-mode
// playback loop.
func (ds *deviceStream) writeLoop() {
	defer ds.wg.Done()
	byteBuf := make([]byte, len(ds.out)*2)
	for {
		select {
		case <-ds.stopCh:
			return
		default:
		}
		n, _ := ds.ring.Read(byteBuf)
		for i := n; i < len(byteBuf); i++ {
			byteBuf[i] = 0
		}
		for i := range ds.out {
			ds.out[i] = int16(uint16(byteBuf[2*i]) | uint16(byteBuf[2*i+1])<<8)
		}
		if err := ds.stream.Write(); err != nil {
			return
		}
	}
}

func (d *Driver) CreateConverter(src, dst gameaudio.AudioFormat) (any, error) {
	return convert.New(src.Channels, src.SampleRate, dst.Channels, dst.SampleRate, gameaudio.DecodeChunkBytes), nil
}

func (d *Driver) ConverterPush(stream any, buf []byte) error {
	return stream.(*convert.Converter).Push(buf)
}

func (d *Driver) ConverterPull(stream any, buf []byte) (int, error) {
	return stream.(*convert.Converter).Pull(buf)
}

func (d *Driver) ConverterAvailable(stream any) (int, error) {
	return stream.(*convert.Converter).Available(), nil
}

func (d *Driver) ConverterFlush(stream any) error {
	return stream.(*convert.Converter).Flush()
}

func (d *Driver) ConverterDestroy(stream any) error {
	stream.(*convert.Converter).Close()
	return nil
}
