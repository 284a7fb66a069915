package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrEnumeration is returned when the platform device list cannot be read.
	ErrEnumeration = errors.New("error listing MIDI devices")
	// ErrProviderUnavailable is returned by providers not built for this platform.
	ErrProviderUnavailable = errors.New("MIDI functionality is not available on this platform")
)

// ConnectError reports a source that could not be opened.
type ConnectError struct {
	SourceName string
	Err        error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("error connecting to MIDI source %q: %v", e.SourceName, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
