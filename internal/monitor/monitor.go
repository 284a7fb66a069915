// Package monitor reacts to device-list changes by republishing the roster and
// connecting the sources of valid devices that appeared since the last scan.
package monitor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midibridge/internal/connection"
	"github.com/leandrodaf/midibridge/internal/devicefilter"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// ErrAlreadyStarted is returned by Start on a running monitor.
var ErrAlreadyStarted = errors.New("device monitor already started")

// Platform is the part of the provider the monitor reads.
type Platform interface {
	Devices() ([]contracts.Device, error)
	Subscribe(onChange func()) (unsubscribe func(), err error)
}

// Connections is what the monitor asks to (re)establish connections.
type Connections interface {
	Connect(source contracts.Source) (*connection.Entry, error)
	Remove(sourceID string) bool
	Retire(sourceID string) bool
}

// Publisher receives roster snapshots and scan failures.
type Publisher interface {
	RosterChanged(roster contracts.Roster)
	ConnectionError(sourceName string, err error)
}

// Monitor holds a standing device-change subscription.
type Monitor struct {
	platform    Platform
	connections Connections
	publisher   Publisher
	logger      contracts.Logger
	prune       bool
	everyScan   bool

	scanMu   sync.Mutex
	active   bool
	previous map[string]struct{}

	mu          sync.Mutex
	unsubscribe func()
}

// Option configures a Monitor.
type Option func(*Monitor)

// PruneRemoved disconnects sources that are missing from a scan. Without it
// their handles are retired and stay open until the connection registry is
// closed.
func PruneRemoved(prune bool) Option {
	return func(m *Monitor) { m.prune = prune }
}

// ConnectEveryScan asks for a connection to every valid source on every scan,
// not only to sources that are new since the previous one.
func ConnectEveryScan(every bool) Option {
	return func(m *Monitor) { m.everyScan = every }
}

// New creates a stopped Monitor.
func New(platform Platform, connections Connections, publisher Publisher, logger contracts.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		platform:    platform,
		connections: connections,
		publisher:   publisher,
		logger:      logger,
		previous:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to device-list changes. Each notification triggers Scan.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		return ErrAlreadyStarted
	}

	m.scanMu.Lock()
	m.active = true
	m.scanMu.Unlock()

	unsubscribe, err := m.platform.Subscribe(m.onChange)
	if err != nil {
		m.scanMu.Lock()
		m.active = false
		m.scanMu.Unlock()
		return fmt.Errorf("subscribing to MIDI device changes: %w", err)
	}
	m.unsubscribe = unsubscribe
	m.logger.Info("MIDI device monitor started")
	return nil
}

// Stop removes the subscription and waits for a scan in progress to finish.
// Notifications delivered after Stop returns are ignored. Established
// connections are left open.
func (m *Monitor) Stop() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe == nil {
		return
	}
	unsubscribe()

	m.scanMu.Lock()
	m.active = false
	m.scanMu.Unlock()
	m.logger.Info("MIDI device monitor stopped")
}

func (m *Monitor) onChange() {
	m.scanMu.Lock()
	defer m.scanMu.Unlock()
	if !m.active {
		return
	}
	_ = m.scan()
}

// Scan reads the device list, publishes the roster of valid devices and
// connects the sources that were not connected by the previous scan. Sources
// missing from the list are dropped from the registry so they reconnect when
// they come back. A failure to read the list is published once as a
// connection error and returned; nothing is retried.
func (m *Monitor) Scan() error {
	m.scanMu.Lock()
	defer m.scanMu.Unlock()
	return m.scan()
}

func (m *Monitor) scan() error {
	devices, err := m.platform.Devices()
	if err != nil {
		err = fmt.Errorf("%w: %v", contracts.ErrEnumeration, err)
		m.logger.Error("MIDI device scan failed", m.logger.Field().Error("error", err))
		m.publisher.ConnectionError(contracts.DeviceListSourceName, err)
		return err
	}

	valid := devicefilter.Valid(devices)
	m.publisher.RosterChanged(devicefilter.RosterOf(valid))
	m.logger.Debug("MIDI devices scanned",
		m.logger.Field().Int("listed", len(devices)),
		m.logger.Field().Int("valid", len(valid)))

	current := make(map[string]struct{})
	for _, device := range valid {
		for _, entity := range device.Entities {
			for _, source := range entity.Sources {
				if _, seen := m.previous[source.ID]; seen {
					current[source.ID] = struct{}{}
					if !m.everyScan {
						continue
					}
				}
				// Failures are published by the connection manager. A failed
				// source stays out of current and is retried next scan.
				if _, err := m.connections.Connect(source); err == nil {
					current[source.ID] = struct{}{}
				}
			}
		}
	}

	departed := 0
	for id := range m.previous {
		if _, ok := current[id]; ok {
			continue
		}
		if m.prune {
			m.connections.Remove(id)
		} else {
			m.connections.Retire(id)
		}
		departed++
	}
	if departed > 0 {
		m.logger.Info("MIDI sources no longer listed",
			m.logger.Field().Int("count", departed),
			m.logger.Field().Bool("disconnected", m.prune))
	}
	m.previous = current
	return nil
}
