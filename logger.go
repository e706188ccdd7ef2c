package gameaudio

import "log"

// Logger is the optional trace/info/error sink the service reports through.
// A nil Logger is always valid — every call site in this package guards with
// a nil check before calling out.
type Logger interface {
	Trace(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

func logTrace(l Logger, format string, args ...any) {
	if l != nil {
		l.Trace(format, args...)
	}
}

func logInfo(l Logger, format string, args ...any) {
	if l != nil {
		l.Info(format, args...)
	}
}

func logError(l Logger, format string, args ...any) {
	if l != nil {
		l.Error(format, args...)
	}
}

// stdLogger wraps the standard log package with a "[gameaudio:<tag>]" prefix.
type stdLogger struct {
	*log.Logger
}

// NewStdLogger returns a Logger backed by the standard library logger,
// writing to log.Default's output with the given component tag.
func NewStdLogger(tag string) Logger {
	return &stdLogger{Logger: log.New(log.Writer(), "[gameaudio:"+tag+"] ", log.LstdFlags)}
}

func (s *stdLogger) Trace(format string, args ...any) { s.Printf(format, args...) }
func (s *stdLogger) Info(format string, args ...any)  { s.Printf(format, args...) }
func (s *stdLogger) Error(format string, args ...any) { s.Printf(format, args...) }
