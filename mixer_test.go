package gameaudio

import "testing"

func TestTickNoopBeforeInitialize(t *testing.T) {
	driver := newFakeDriver()
	svc := newTestService(driver, nil)
	svc.Tick()
	if driver.pushCalls != 0 {
		t.Fatalf("pushCalls = %d, want 0 before Initialize", driver.pushCalls)
	}
}

func TestTickNoopWithEmptyTable(t *testing.T) {
	driver := newFakeDriver()
	svc := newTestService(driver, nil)
	if err := svc.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	svc.Tick()
	if driver.pushCalls != 0 {
		t.Fatalf("pushCalls = %d, want 0 with empty voice table", driver.pushCalls)
	}
}

func TestTickNoopWhenBytesPerFrameZero(t *testing.T) {
	driver := newFakeDriver()
	svc := NewService(driver, nil, WithMixFrames(4),
		WithDesiredFormat(AudioFormat{Sample: SignedInt16, Channels: 0, SampleRate: 8000}))
	if err := svc.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	format := AudioFormat{Sample: SignedInt16, Channels: 0, SampleRate: 8000}
	svc.newDecoder = constDecoderFactory(&fakeDecoder{format: format, data: make([]byte, 64)})
	// PlayEffect succeeds here (the converter clamps the zero channel count
	// to 1), so the table is non-empty; bpf=0 must still make Tick a no-op
	// rather than panic on a zero-length accumulator.
	_ = svc.PlayEffect("x.wav", false)
	svc.Tick()
	if driver.pushCalls != 0 {
		t.Fatalf("pushCalls = %d, want 0 when bytes_per_frame == 0", driver.pushCalls)
	}
}

func TestTickRespectsQueueBackpressure(t *testing.T) {
	driver := newFakeDriver()
	svc := newTestService(driver, nil)
	if err := svc.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	format := AudioFormat{Sample: SignedInt16, Channels: 1, SampleRate: 8000}
	svc.newDecoder = constDecoderFactory(&fakeDecoder{format: format, data: make([]byte, 4096)})
	if err := svc.PlayEffect("fx.wav", false); err != nil {
		t.Fatalf("PlayEffect: %v", err)
	}

	bpf := svc.mixFormat.BytesPerFrame()
	driver.queued = bpf * svc.mixFrames // already at queue_limit
	svc.Tick()
	if driver.pushCalls != 0 {
		t.Fatalf("pushCalls = %d, want 0 when queue already at queue_limit", driver.pushCalls)
	}
}

func TestTickMixesAndSweepsDeadVoice(t *testing.T) {
	driver := newFakeDriver()
	svc := newTestService(driver, nil)
	if err := svc.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	format := AudioFormat{Sample: SignedInt16, Channels: 1, SampleRate: 8000}
	// Enough frames to comfortably survive the converter's one-frame
	// interpolation carry once Flush runs at EOF.
	data := make([]byte, 2*(svc.mixFrames+8)*2)
	for i := range data {
		data[i] = 0
	}
	svc.newDecoder = constDecoderFactory(&fakeDecoder{format: format, data: data})
	if err := svc.PlayEffect("fx.wav", false); err != nil {
		t.Fatalf("PlayEffect: %v", err)
	}
	if svc.table.voiceCount() != 1 {
		t.Fatalf("voiceCount = %d, want 1 after PlayEffect", svc.table.voiceCount())
	}

	for i := 0; i < 10; i++ {
		svc.Tick()
		driver.queued = 0 // simulate the device continuously draining
	}

	if svc.table.voiceCount() != 0 {
		t.Fatalf("voiceCount = %d after enough ticks to exhaust the effect, want 0", svc.table.voiceCount())
	}
}

func TestTickSumsAndSaturatesMultipleVoices(t *testing.T) {
	driver := newFakeDriver()
	svc := newTestService(driver, nil)
	if err := svc.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	svc.SetVolume(1.0)

	format := AudioFormat{Sample: SignedInt16, Channels: 1, SampleRate: 8000}
	full := make([]byte, (svc.mixFrames+4)*2)
	for i := 0; i < len(full)/2; i++ {
		full[2*i] = 0xFF
		full[2*i+1] = 0x7F // 32767, full-scale positive
	}

	svc.newDecoder = constDecoderFactory(&fakeDecoder{format: format, data: append([]byte(nil), full...)})
	if err := svc.PlayBackground("bg.wav", true); err != nil {
		t.Fatalf("PlayBackground: %v", err)
	}
	svc.newDecoder = constDecoderFactory(&fakeDecoder{format: format, data: append([]byte(nil), full...)})
	if err := svc.PlayEffect("fx.wav", true); err != nil {
		t.Fatalf("PlayEffect: %v", err)
	}

	svc.Tick()
	if driver.pushCalls != 1 {
		t.Fatalf("pushCalls = %d, want 1", driver.pushCalls)
	}
	pushed := driver.pushedBytes[0]
	for i := 0; i < len(pushed)/2; i++ {
		sample := int16(uint16(pushed[2*i]) | uint16(pushed[2*i+1])<<8)
		if sample < 0 {
			t.Fatalf("sample %d = %d, want >= 0 (two positive full-scale voices saturate high, never wrap negative)", i, sample)
		}
	}
}
