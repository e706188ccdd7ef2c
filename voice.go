package gameaudio

// Voice is one playing source: a decoder, its format converter, a loop
// flag, and the open/finished flags that drive its state machine. It is
// exclusively owned by a voiceTable; nothing outside this package ever
// holds a *Voice.
type Voice struct {
	path      string
	decoder   Decoder
	converter *converterStream
	loop      bool
	open      bool // decoder.Open succeeded and close() has not run yet
	finished  bool // decoder will not produce any more input
}

// newVoice opens path with decoder, creates a converter from the decoder's
// source format to mixFormat, and returns a Voice ready for readFrames.
// On any failure it closes/destroys whatever it already opened and returns
// the error — no partial voice is ever returned.
func newVoice(path string, loop bool, decoder Decoder, driver AudioDriver, mixFormat AudioFormat) (*Voice, error) {
	srcFormat, err := decoder.Open(path)
	if err != nil {
		return nil, err
	}
	conv, err := newConverterStream(driver, srcFormat, mixFormat)
	if err != nil {
		decoder.Close()
		return nil, err
	}
	return &Voice{
		path:      path,
		decoder:   decoder,
		converter: conv,
		loop:      loop,
		open:      true,
	}, nil
}

// dead reports whether the voice is eligible for destruction. Once the
// decoder is no longer open, any buffered converter residue is discarded
// rather than drained, since it can never be refilled without a live
// decoder; a voice only counts as dead from exhaustion once both the
// decoder is finished and the converter has nothing left to pull.
func (v *Voice) dead() bool {
	if !v.open {
		return true
	}
	if !v.finished {
		return false
	}
	avail, err := v.converter.available()
	return err != nil || avail == 0
}

// close releases the decoder and converter. Safe to call once; callers
// (voiceTable.sweep, clearAll, clearBackground, replaceBackground) call it exactly
// once per voice removal.
func (v *Voice) close() {
	if v.decoder != nil {
		v.decoder.Close()
	}
	if v.converter != nil {
		v.converter.destroy()
	}
	v.open = false
}

// readFrames is the mixer's inner pull primitive. It tops up the converter
// from the decoder until it holds at least framesNeeded worth
// of mix-format bytes (or the decoder can give no more), then pulls into
// out, zero-filling any shortfall. It returns the number of bytes actually
// pulled before zero-fill, so the caller knows whether this voice
// contributed audio this tick.
func (v *Voice) readFrames(out []byte, framesNeeded, bytesPerFrame int, decodeBuf []byte, logger Logger) int {
	// Not ACTIVE (open, !finished) nor DRAINING (open, finished): nothing
	// to pull.
	if !v.open {
		return 0
	}

	needBytes := framesNeeded * bytesPerFrame
	for {
		avail, err := v.converter.available()
		if err != nil {
			logError(logger, "voice %s: converter query failed: %v", v.path, err)
			v.finished = true
			break
		}
		if avail >= needBytes {
			break
		}
		n := v.decoder.ReadChunk(decodeBuf)
		switch {
		case n > 0:
			if err := v.converter.push(decodeBuf[:n]); err != nil {
				logError(logger, "voice %s: converter push failed: %v", v.path, err)
				v.finished = true
				return v.drainPulled(out, needBytes)
			}
		case n == 0:
			if v.loop {
				if err := v.decoder.SeekToStart(); err != nil {
					logError(logger, "voice %s: loop seek failed: %v", v.path, err)
					v.finished = true
					return v.drainPulled(out, needBytes)
				}
				continue
			}
			v.finished = true
			if err := v.converter.flush(); err != nil {
				logError(logger, "voice %s: converter flush failed: %v", v.path, err)
			}
			return v.drainPulled(out, needBytes)
		default:
			logError(logger, "voice %s: decode error", v.path)
			v.finished = true
			return v.drainPulled(out, needBytes)
		}
	}
	return v.drainPulled(out, needBytes)
}

func (v *Voice) drainPulled(out []byte, needBytes int) int {
	want := needBytes
	if want > len(out) {
		want = len(out)
	}
	n, err := v.converter.pull(out[:want])
	if err != nil {
		n = 0
	}
	if n < len(out) {
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
	}
	return n
}
