package gameaudio

import (
	"errors"
	"fmt"
)

// Sentinel errors supporting errors.Is, one per error kind the service can
// report. InitializationFailure and LoadFailure wrap the underlying driver
// error with fmt.Errorf.
var (
	ErrNotInitialized       = errors.New("gameaudio: not initialized")
	ErrAlreadyInitialized   = errors.New("gameaudio: already initialized")
	ErrInitializationFailed = errors.New("gameaudio: initialization failed")
	ErrLoadFailed           = errors.New("gameaudio: failed to load audio source")
)

func initError(stage string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrInitializationFailed, stage, cause)
}

func loadError(path string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoadFailed, path, cause)
}
