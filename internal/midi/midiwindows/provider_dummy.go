//go:build !windows
// +build !windows

package midiwindows

import (
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

type dummyProvider struct {
	logger contracts.Logger
}

// NewProvider initializes a dummy provider for non-Windows systems.
func NewProvider(options contracts.ProviderOptions) (contracts.Provider, error) {
	options.Logger.Info("Using dummy winmm provider for non-Windows system")
	return &dummyProvider{logger: options.Logger}, nil
}

// Devices logs a warning and reports winmm as unavailable.
func (m *dummyProvider) Devices() ([]contracts.Device, error) {
	m.logger.Warn("Devices called on dummy winmm provider")
	return nil, contracts.ErrProviderUnavailable
}

// Connect logs a warning and reports winmm as unavailable.
func (m *dummyProvider) Connect(contracts.Source, contracts.CommandHandler) (contracts.Connection, error) {
	m.logger.Warn("Connect called on dummy winmm provider")
	return nil, contracts.ErrProviderUnavailable
}

func (m *dummyProvider) Subscribe(func()) (func(), error) {
	return func() {}, nil
}

func (m *dummyProvider) Close() error {
	return nil
}
