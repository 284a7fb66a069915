// Package bridge wires the monitor, connection manager, dispatcher and query
// service around one platform provider.
package bridge

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/midibridge/internal/connection"
	"github.com/leandrodaf/midibridge/internal/dispatch"
	"github.com/leandrodaf/midibridge/internal/monitor"
	"github.com/leandrodaf/midibridge/internal/query"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// Bridge implements contracts.Bridge.
type Bridge struct {
	logger      contracts.Logger
	provider    contracts.Provider
	connections *connection.Manager
	monitor     *monitor.Monitor
	query       *query.Service

	stopOnce sync.Once
	stopErr  error
}

// New builds a Bridge around provider. The bridge owns provider and closes it on Stop.
func New(provider contracts.Provider, options contracts.ClientOptions) *Bridge {
	d := dispatch.New(options.EventSink, options.Logger)
	conns := connection.NewManager(provider, d, options.Logger,
		connection.AllowDuplicates(options.AllowDuplicates))

	return &Bridge{
		logger:      options.Logger,
		provider:    provider,
		connections: conns,
		monitor: monitor.New(provider, conns, d, options.Logger,
			monitor.PruneRemoved(options.PruneRemoved),
			monitor.ConnectEveryScan(options.AllowDuplicates)),
		query: query.New(provider),
	}
}

// Start installs the device-change subscription.
func (b *Bridge) Start() error {
	return b.monitor.Start()
}

// Scan runs one device scan immediately, outside the change subscription.
func (b *Bridge) Scan() error {
	return b.monitor.Scan()
}

// ListDevices returns the roster of valid devices.
func (b *Bridge) ListDevices() (contracts.Roster, error) {
	return b.query.ListDevices()
}

// Connections returns a snapshot of the held connections.
func (b *Bridge) Connections() []connection.Entry {
	return b.connections.Entries()
}

// Stop removes the subscription, waits for a scan in progress, disconnects
// every source and closes the provider. Later calls return the first result.
func (b *Bridge) Stop() error {
	b.stopOnce.Do(func() {
		b.logger.Info("Stopping MIDI bridge")
		b.monitor.Stop()
		b.connections.Close()
		if err := b.provider.Close(); err != nil {
			b.stopErr = fmt.Errorf("closing MIDI provider: %w", err)
		}
	})
	return b.stopErr
}
