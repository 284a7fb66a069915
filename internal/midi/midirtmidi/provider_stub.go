//go:build !rtmidi

// Package midirtmidi exposes rtmidi input ports through gomidi.
package midirtmidi

import (
	"fmt"

	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// NewProvider fails unless the binary is built with -tags rtmidi.
func NewProvider(options contracts.ProviderOptions) (contracts.Provider, error) {
	return nil, fmt.Errorf("%w: rtmidi provider is not included in this build (build with -tags rtmidi)", contracts.ErrProviderUnavailable)
}
