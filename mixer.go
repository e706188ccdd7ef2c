package gameaudio

import "math"

// Tick advances the mixer by one tick, producing at most mixFrames frames
// of output. It is synchronous and non-cancellable, meant to be called once
// per iteration of the host's render/main loop.
func (s *Service) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || s.device == nil {
		return
	}
	if s.table.isEmpty() {
		return
	}

	bpf := s.mixFormat.BytesPerFrame()
	if bpf == 0 {
		return
	}

	queued, err := s.driver.QueuedBytes(s.device)
	if err != nil || queued < 0 {
		logError(s.logger, "queued bytes query failed: %v", err)
		s.metrics.queryFailure()
		return
	}
	queueLimit := bpf * s.mixFrames
	if queued >= queueLimit {
		logTrace(s.logger, "tick skipped: queued=%d limit=%d", queued, queueLimit)
		return
	}

	for i := range s.mixAccum {
		s.mixAccum[i] = 0
	}
	anyAudio := false

	if s.table.background != nil {
		if s.mixVoice(s.table.background) {
			anyAudio = true
		}
	}
	for _, v := range s.table.effects {
		if s.mixVoice(v) {
			anyAudio = true
		}
	}

	swept := s.table.sweep()
	s.metrics.voicesSweptBy(swept)
	s.metrics.setActiveVoices(s.table.voiceCount())

	if !anyAudio {
		return
	}

	volume := s.volume
	for i, acc := range s.mixAccum {
		sample := uint16(clampInt32ToInt16(math.Round(float64(acc) * volume)))
		s.outBuf[2*i] = byte(sample)
		s.outBuf[2*i+1] = byte(sample >> 8)
	}

	if err := s.driver.PushBytes(s.device, s.outBuf); err != nil {
		logError(s.logger, "device push failed: %v", err)
		s.metrics.pushFailure()
	}
	s.metrics.tick()
}

// mixVoice pulls one tick's worth of frames from v and adds every sample
// into the int32 accumulator. It returns whether v contributed any audio.
func (s *Service) mixVoice(v *Voice) bool {
	bpf := s.mixFormat.BytesPerFrame()
	n := v.readFrames(s.voiceBuf, s.mixFrames, bpf, s.decodeBuf, s.logger)
	if n <= 0 {
		return false
	}
	logTrace(s.logger, "voice %s: pulled %d bytes", v.path, n)
	samples := n / 2 // signed 16-bit
	for i := 0; i < samples; i++ {
		sample := int16(uint16(s.voiceBuf[2*i]) | uint16(s.voiceBuf[2*i+1])<<8)
		s.mixAccum[i] += int32(sample)
	}
	return true
}

func clampInt32ToInt16(v float64) int32 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int32(v)
}
