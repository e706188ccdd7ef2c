// Package convert implements a format-converter staging buffer: a push/pull
// bridge that accepts 16-bit interleaved PCM in one sample rate/channel
// count and produces 16-bit interleaved PCM in another.
//
// The resampling itself is linear interpolation, not a full windowed-sinc
// filter (see root DESIGN.md for why). It converts in a streaming push/pull
// shape rather than a one-shot whole-buffer call, backed by a real ring
// buffer instead of a growable slice.
package convert

import (
	"math"
	"sync"

	"github.com/smallnest/ringbuffer"
)

const bytesPerSample = 2 // signed 16-bit

// minStagingCapacity floors the staging ring size regardless of maxPushBytes,
// so a converter constructed with a tiny or zero hint still has room for at
// least a handful of frames.
const minStagingCapacity = 4096

// Converter bridges PCM in a source format to PCM in a destination format.
// Every method serializes on an internal mutex; in this module each Voice
// owns exactly one Converter and calls it only while the service mutex is
// held.
type Converter struct {
	mu sync.Mutex

	srcChannels, dstChannels int
	ratio                    float64 // dstRate / srcRate

	// carry holds source-format int16 samples left over from the previous
	// Push that did not yet form a complete resampled output frame, plus
	// the fractional playback position within that carry for linear
	// interpolation continuity across Push calls.
	carry []int16
	pos   float64

	// pending holds the bytes of a trailing partial source frame from the
	// previous Push, completed by the next Push.
	pending []byte

	ring    *ringbuffer.RingBuffer
	flushed bool
}

// New creates a converter from (srcChannels, srcRateHz) to (dstChannels,
// dstRateHz). maxPushBytes is the largest single buffer the caller will ever
// pass to Push (e.g. the decoder's chunk size); the staging ring is sized
// from it so that one Push's worth of converted output always fits, rather
// than risk losing samples to a full ring mid-stream.
func New(srcChannels, srcRateHz, dstChannels, dstRateHz, maxPushBytes int) *Converter {
	if srcChannels < 1 {
		srcChannels = 1
	}
	if dstChannels < 1 {
		dstChannels = 1
	}
	ratio := 1.0
	if srcRateHz > 0 {
		ratio = float64(dstRateHz) / float64(srcRateHz)
	}
	return &Converter{
		srcChannels: srcChannels,
		dstChannels: dstChannels,
		ratio:       ratio,
		ring:        ringbuffer.New(stagingCapacityFor(srcChannels, dstChannels, ratio, maxPushBytes)),
	}
}

// stagingCapacityFor bounds the worst case: maxPushBytes of source-format
// PCM, resampled at ratio and widened to dstChannels, plus one frame of
// slack for interpolation/flush rounding.
func stagingCapacityFor(srcChannels, dstChannels int, ratio float64, maxPushBytes int) int {
	srcFrameBytes := bytesPerSample * srcChannels
	dstFrameBytes := bytesPerSample * dstChannels
	maxSrcFrames := (maxPushBytes + srcFrameBytes - 1) / srcFrameBytes
	maxDstFrames := int(math.Ceil(float64(maxSrcFrames)*ratio)) + 1
	capacity := maxDstFrames*dstFrameBytes + dstFrameBytes
	if capacity < minStagingCapacity {
		capacity = minStagingCapacity
	}
	return capacity
}

// Push accepts an arbitrary byte-aligned chunk of source-format PCM, resamples
// and remaps channels to the destination format, and stages the result for
// Pull. A trailing partial frame is held back until the next Push completes
// it. It never blocks.
func (c *Converter) Push(buf []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	srcFrameBytes := bytesPerSample * c.srcChannels
	if len(c.pending) > 0 {
		buf = append(c.pending, buf...)
		c.pending = nil
	}
	usable := (len(buf) / srcFrameBytes) * srcFrameBytes
	if usable < len(buf) {
		c.pending = append([]byte(nil), buf[usable:]...)
	}
	if usable == 0 {
		return nil
	}

	in := bytesToInt16(buf[:usable])
	samples := append(c.carry, in...)
	c.carry = nil

	srcFrames := len(samples) / c.srcChannels
	if srcFrames == 0 {
		c.carry = samples
		return nil
	}

	out := c.resample(samples, srcFrames)
	if len(out) > 0 {
		return c.writeRing(int16ToBytes(out))
	}
	return nil
}

// writeRing writes data to the staging ring, retrying on a short write so no
// converted byte is silently dropped. A non-nil error after a short write
// means the ring genuinely has no room left.
func (c *Converter) writeRing(data []byte) error {
	for len(data) > 0 {
		n, err := c.ring.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		data = data[n:]
	}
	return nil
}

// resample walks the source frames at c.pos, advancing by 1/ratio per output
// frame, linearly interpolating between adjacent source frames, and mixing
// source channels down or up to c.dstChannels. It leaves any source frames it
// could not fully consume in c.carry for the next Push.
func (c *Converter) resample(samples []int16, srcFrames int) []int16 {
	var out []int16
	for {
		i0 := int(c.pos)
		if i0+1 >= srcFrames {
			break
		}
		frac := c.pos - float64(i0)
		for ch := 0; ch < c.dstChannels; ch++ {
			s0 := sampleAt(samples, c.srcChannels, i0, ch)
			s1 := sampleAt(samples, c.srcChannels, i0+1, ch)
			v := float64(s0) + (float64(s1)-float64(s0))*frac
			out = append(out, clampInt16(v))
		}
		if c.ratio <= 0 {
			break
		}
		c.pos += 1.0 / c.ratio
	}

	// Carry over whatever whole source frames remain unconsumed, rebasing pos.
	consumedFrames := int(c.pos)
	if consumedFrames > 0 {
		if consumedFrames >= srcFrames {
			consumedFrames = srcFrames
		}
		c.pos -= float64(consumedFrames)
		remaining := samples[consumedFrames*c.srcChannels:]
		c.carry = append(c.carry[:0], remaining...)
	} else {
		c.carry = append(c.carry[:0], samples...)
	}
	return out
}

// sampleAt returns source sample at frame index `frame`, destination channel
// `dstCh`. A mono source is duplicated to every destination channel; when
// downmixing, destination channel k takes source channel k and the source
// channels beyond the destination count are dropped, not averaged.
func sampleAt(samples []int16, srcChannels, frame, dstCh int) int16 {
	base := frame * srcChannels
	if srcChannels == 1 {
		return samples[base]
	}
	if dstCh < srcChannels {
		return samples[base+dstCh]
	}
	// Upmixing beyond the source channel count: repeat the last source channel.
	return samples[base+srcChannels-1]
}

// Pull drains up to len(out) bytes of destination-format PCM. It returns
// fewer bytes than requested when the internal queue is drained — the caller
// should not treat that as an error.
func (c *Converter) Pull(out []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.ring.Length()
	if n > len(out) {
		n = len(out)
	}
	if n == 0 {
		return 0, nil
	}
	return c.ring.Read(out[:n])
}

// Available reports how many destination-format bytes can be pulled right now.
func (c *Converter) Available() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ring.Length()
}

// Flush signals that no more source data will be pushed. resample always
// holds back the last source frame of whatever it's given, since it needs a
// following frame to interpolate against; with no more Pushes coming there
// will never be one, so Flush duplicates the final carried frame as its own
// successor (a hold-last-sample tail) before resampling, guaranteeing every
// source sample is eventually emitted rather than stranded in carry.
func (c *Converter) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flushed {
		return nil
	}
	c.flushed = true
	if len(c.carry) < c.srcChannels {
		return nil
	}
	lastFrame := c.carry[len(c.carry)-c.srcChannels:]
	padded := append(append([]int16(nil), c.carry...), lastFrame...)
	out := c.resample(padded, len(padded)/c.srcChannels)
	if len(out) > 0 {
		return c.writeRing(int16ToBytes(out))
	}
	return nil
}

// Close releases the converter's resources.
func (c *Converter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ring.Reset()
	c.carry = nil
}

func bytesToInt16(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
	return out
}

func int16ToBytes(s []int16) []byte {
	out := make([]byte, len(s)*2)
	for i, v := range s {
		out[2*i] = byte(uint16(v))
		out[2*i+1] = byte(uint16(v) >> 8)
	}
	return out
}

func clampInt16(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
