package gameaudio

// converterStream is a thin per-voice handle over the driver's converter
// operations. It exists as its own type, distinct from the
// bare `any` handle the driver hands back, so Voice and its tests talk to a
// typed, destroy-once-only owning handle rather than passing the driver and
// the raw handle around together everywhere.
type converterStream struct {
	driver    AudioDriver
	handle    any
	destroyed bool
}

func newConverterStream(driver AudioDriver, src, dst AudioFormat) (*converterStream, error) {
	h, err := driver.CreateConverter(src, dst)
	if err != nil {
		return nil, err
	}
	return &converterStream{driver: driver, handle: h}, nil
}

func (c *converterStream) push(buf []byte) error {
	return c.driver.ConverterPush(c.handle, buf)
}

func (c *converterStream) pull(buf []byte) (int, error) {
	return c.driver.ConverterPull(c.handle, buf)
}

func (c *converterStream) available() (int, error) {
	return c.driver.ConverterAvailable(c.handle)
}

func (c *converterStream) flush() error {
	return c.driver.ConverterFlush(c.handle)
}

// destroy releases the converter. Safe to call more than once; only the
// first call reaches the driver, enforcing the "destroyed exactly once"
// invariant destroy-exactly-once relies on.
func (c *converterStream) destroy() error {
	if c.destroyed {
		return nil
	}
	c.destroyed = true
	return c.driver.ConverterDestroy(c.handle)
}
