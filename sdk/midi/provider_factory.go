package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midibridge/internal/midi/mididarwin"
	"github.com/leandrodaf/midibridge/internal/midi/midirtmidi"
	"github.com/leandrodaf/midibridge/internal/midi/midiwindows"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// ErrUnsupportedBackend is returned when no provider exists for the requested backend.
var ErrUnsupportedBackend = errors.New("unsupported MIDI backend")

// providerInitializers maps backends to corresponding provider initializers.
var providerInitializers = map[contracts.Backend]func(contracts.ProviderOptions) (contracts.Provider, error){
	contracts.CoreMIDIBackend: mididarwin.NewProvider,  // macOS (Darwin) CoreMIDI provider.
	contracts.WinMMBackend:    midiwindows.NewProvider, // Windows winmm provider.
	contracts.RtMidiBackend:   midirtmidi.NewProvider,  // rtmidi provider, needs the rtmidi build tag.
}

// nativeBackends maps OS names to the backend chosen by contracts.AutoBackend.
var nativeBackends = map[string]contracts.Backend{
	"darwin":  contracts.CoreMIDIBackend,
	"windows": contracts.WinMMBackend,
}

// ResolveBackend turns AutoBackend into the backend for goos.
func ResolveBackend(b contracts.Backend, goos string) contracts.Backend {
	if b != "" && b != contracts.AutoBackend {
		return b
	}
	if native, ok := nativeBackends[goos]; ok {
		return native
	}
	return contracts.RtMidiBackend
}

// NewProvider builds the provider selected by opts.Backend for the current
// operating system.
//
// opts *contracts.ClientOptions: Configuration options carrying the backend, logger and CoreMIDI client name.
//
// Returns:
//   - contracts.Provider: The platform provider.
//   - error: ErrUnsupportedBackend for unknown backends, or the initializer's error.
func NewProvider(opts *contracts.ClientOptions) (contracts.Provider, error) {
	backend := ResolveBackend(opts.Backend, runtime.GOOS)
	initializer, exists := providerInitializers[backend]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, backend)
	}

	opts.Logger.Info("Creating MIDI provider", opts.Logger.Field().String("backend", string(backend)))
	return initializer(contracts.ProviderOptions{
		Logger:       opts.Logger,
		ClientName:   opts.CoreMIDIConfig.ClientName,
		PollInterval: opts.PollInterval,
	})
}
