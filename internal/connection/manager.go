// Package connection holds the live input subscriptions of the bridge.
package connection

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leandrodaf/midibridge/internal/decoder"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// ErrClosed is returned by Connect once the manager has been closed.
var ErrClosed = errors.New("connection manager closed")

// Publisher receives decoded commands and connection failures.
type Publisher interface {
	CommandReceived(cmd contracts.Command, sourceName string)
	ConnectionError(sourceName string, err error)
}

// Connector opens a subscription to a source.
type Connector interface {
	Connect(source contracts.Source, handler contracts.CommandHandler) (contracts.Connection, error)
}

// Entry is one registered connection.
type Entry struct {
	ID          uuid.UUID
	SourceID    string
	SourceName  string
	Established time.Time

	conn contracts.Connection
}

// Manager opens connections and keeps them in a registry keyed by source ID.
type Manager struct {
	connector       Connector
	publisher       Publisher
	logger          contracts.Logger
	allowDuplicates bool

	mu      sync.RWMutex
	entries map[string][]*Entry
	retired []*Entry
	closed  bool
}

// Option configures a Manager.
type Option func(*Manager)

// AllowDuplicates makes Connect open a new connection even when the source is
// already registered.
func AllowDuplicates(allow bool) Option {
	return func(m *Manager) { m.allowDuplicates = allow }
}

// NewManager creates an empty Manager.
func NewManager(connector Connector, publisher Publisher, logger contracts.Logger, opts ...Option) *Manager {
	m := &Manager{
		connector: connector,
		publisher: publisher,
		logger:    logger,
		entries:   make(map[string][]*Entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect subscribes to source. Each raw command is decoded and published with
// the source's display name. A failure is published as a connection error and
// returned as a *contracts.ConnectError; the registry is left untouched.
// When the source is already connected and duplicates are not allowed, the
// existing entry is returned. After Close every call fails with ErrClosed.
func (m *Manager) Connect(source contracts.Source) (*Entry, error) {
	name := source.DisplayName()

	if m.isClosed() {
		return nil, ErrClosed
	}
	if !m.allowDuplicates {
		if existing := m.lookup(source.ID); existing != nil {
			m.logger.Debug("MIDI source already connected",
				m.logger.Field().String("source", name),
				m.logger.Field().String("connectionID", existing.ID.String()))
			return existing, nil
		}
	}

	conn, err := m.connector.Connect(source, func(raw contracts.RawCommand) {
		m.publisher.CommandReceived(decoder.Decode(raw), name)
	})
	if err != nil {
		cerr := &contracts.ConnectError{SourceName: name, Err: err}
		m.logger.Error("failed to connect MIDI source",
			m.logger.Field().String("source", name),
			m.logger.Field().Error("error", err))
		m.publisher.ConnectionError(name, err)
		return nil, cerr
	}

	entry := &Entry{
		ID:          uuid.New(),
		SourceID:    source.ID,
		SourceName:  name,
		Established: time.Now().UTC(),
		conn:        conn,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Disconnect()
		return nil, ErrClosed
	}
	m.entries[source.ID] = append(m.entries[source.ID], entry)
	m.mu.Unlock()

	m.logger.Info("MIDI source connected",
		m.logger.Field().String("source", name),
		m.logger.Field().String("connectionID", entry.ID.String()))
	return entry, nil
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *Manager) lookup(sourceID string) *Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if list := m.entries[sourceID]; len(list) > 0 {
		return list[0]
	}
	return nil
}

// Connected reports whether at least one connection to sourceID is held.
func (m *Manager) Connected(sourceID string) bool {
	return m.lookup(sourceID) != nil
}

// Remove disconnects and forgets every connection to sourceID.
func (m *Manager) Remove(sourceID string) bool {
	m.mu.Lock()
	list, ok := m.entries[sourceID]
	delete(m.entries, sourceID)
	m.mu.Unlock()

	for _, e := range list {
		e.conn.Disconnect()
		m.logger.Info("MIDI source disconnected",
			m.logger.Field().String("source", e.SourceName),
			m.logger.Field().String("connectionID", e.ID.String()))
	}
	return ok
}

// Retire forgets every connection to sourceID without disconnecting it, so
// the next Connect for that source opens a fresh one. Retired handles are
// released by Close.
func (m *Manager) Retire(sourceID string) bool {
	m.mu.Lock()
	list, ok := m.entries[sourceID]
	delete(m.entries, sourceID)
	m.retired = append(m.retired, list...)
	m.mu.Unlock()

	for _, e := range list {
		m.logger.Debug("MIDI source retired",
			m.logger.Field().String("source", e.SourceName),
			m.logger.Field().String("connectionID", e.ID.String()))
	}
	return ok
}

// Entries returns a snapshot of all registered connections.
func (m *Manager) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.entries))
	for _, list := range m.entries {
		for _, e := range list {
			out = append(out, *e)
		}
	}
	return out
}

// Len returns the number of registered connections.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, list := range m.entries {
		n += len(list)
	}
	return n
}

// Close disconnects everything, retired handles included, and makes further
// Connect calls fail.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.entries
	retired := m.retired
	m.entries = make(map[string][]*Entry)
	m.retired = nil
	m.closed = true
	m.mu.Unlock()

	for _, list := range all {
		for _, e := range list {
			e.conn.Disconnect()
		}
	}
	for _, e := range retired {
		e.conn.Disconnect()
	}
}
