package gameaudio

import "testing"

func mustVoice(t *testing.T, driver AudioDriver, data []byte, loop bool) *Voice {
	t.Helper()
	format := AudioFormat{Sample: SignedInt16, Channels: 1, SampleRate: 8000}
	d := &fakeDecoder{format: format, data: data}
	v, err := newVoice("x", loop, d, driver, format)
	if err != nil {
		t.Fatalf("newVoice: %v", err)
	}
	return v
}

func TestReplaceBackgroundDestroysPrevious(t *testing.T) {
	driver := newFakeDriver()
	var table voiceTable

	a := mustVoice(t, driver, make([]byte, 64), true)
	table.replaceBackground(a)
	if table.background != a {
		t.Fatalf("background not installed")
	}

	b := mustVoice(t, driver, make([]byte, 64), true)
	table.replaceBackground(b)
	if table.background != b {
		t.Fatalf("background not replaced")
	}
	if !a.decoder.(*fakeDecoder).closed {
		t.Fatalf("previous background decoder not closed")
	}
	if driver.converterDestroys != 1 {
		t.Fatalf("converterDestroys = %d, want 1 (only the replaced voice)", driver.converterDestroys)
	}
}

func TestSweepPreservesOrderOfSurvivors(t *testing.T) {
	driver := newFakeDriver()
	var table voiceTable

	dead := mustVoice(t, driver, nil, false) // no data: decoder EOF on first read
	alive1 := mustVoice(t, driver, make([]byte, 4096), true)
	alive2 := mustVoice(t, driver, make([]byte, 4096), true)

	table.appendEffect(dead)
	table.appendEffect(alive1)
	table.appendEffect(alive2)

	// Drain the "dead" voice to DEAD: decoder EOF with loop=false marks
	// finished and flushes; since it was never pushed any data, Available
	// is already 0, so it becomes dead as soon as readFrames runs once.
	buf := make([]byte, 16)
	dead.readFrames(buf, 4, 2, make([]byte, 8192), nil)

	swept := table.sweep()
	if swept != 1 {
		t.Fatalf("sweep() = %d, want 1", swept)
	}
	if len(table.effects) != 2 {
		t.Fatalf("effects left = %d, want 2", len(table.effects))
	}
	if table.effects[0] != alive1 || table.effects[1] != alive2 {
		t.Fatalf("sweep did not preserve insertion order of survivors")
	}
}

func TestClearAllDestroysEveryVoice(t *testing.T) {
	driver := newFakeDriver()
	var table voiceTable

	table.replaceBackground(mustVoice(t, driver, make([]byte, 64), true))
	table.appendEffect(mustVoice(t, driver, make([]byte, 64), false))
	table.appendEffect(mustVoice(t, driver, make([]byte, 64), false))

	table.clearAll()
	if !table.isEmpty() {
		t.Fatalf("table not empty after clearAll")
	}
	if driver.converterDestroys != 3 {
		t.Fatalf("converterDestroys = %d, want 3", driver.converterDestroys)
	}
}
