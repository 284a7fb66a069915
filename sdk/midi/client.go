package midi

import (
	"github.com/leandrodaf/midibridge/internal/bridge"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// NewBridge creates a new MIDI bridge with the specified options.
// It applies default options, builds the platform provider unless one is
// injected with contracts.WithProvider, and wires the event pipeline.
//
// opts ...contracts.Option: A variadic list of option functions to customize the bridge configuration.
//
// Returns:
//   - contracts.Bridge: An instance of the MIDI bridge, not yet started.
//   - error: An error, if any occurred while creating the provider.
func NewBridge(opts ...contracts.Option) (contracts.Bridge, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	provider := options.Provider
	if provider == nil {
		provider, err = NewProvider(&options)
		if err != nil {
			return nil, err
		}
	}

	return bridge.New(provider, options), nil
}
