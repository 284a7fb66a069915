//go:build !darwin
// +build !darwin

package mididarwin

import (
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

type dummyProvider struct {
	logger contracts.Logger
}

// NewProvider returns a provider that reports CoreMIDI as unavailable.
func NewProvider(options contracts.ProviderOptions) (contracts.Provider, error) {
	options.Logger.Info("Using dummy CoreMIDI provider for non-macOS system")
	return &dummyProvider{logger: options.Logger}, nil
}

func (m *dummyProvider) Devices() ([]contracts.Device, error) {
	m.logger.Warn("Devices called on dummy CoreMIDI provider")
	return nil, contracts.ErrProviderUnavailable
}

func (m *dummyProvider) Connect(contracts.Source, contracts.CommandHandler) (contracts.Connection, error) {
	m.logger.Warn("Connect called on dummy CoreMIDI provider")
	return nil, contracts.ErrProviderUnavailable
}

func (m *dummyProvider) Subscribe(func()) (func(), error) {
	return func() {}, nil
}

func (m *dummyProvider) Close() error {
	return nil
}
