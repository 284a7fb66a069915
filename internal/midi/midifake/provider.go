// Package midifake is an in-memory contracts.Provider for tests.
package midifake

import (
	"errors"
	"sync"

	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// ErrRefused is returned by Connect for sources marked with Refuse.
var ErrRefused = errors.New("connection refused by platform")

// Provider is a scriptable provider. The zero value is not usable; call New.
type Provider struct {
	mu        sync.Mutex
	devices   []contracts.Device
	listErr   error
	refused   map[string]error
	attempts  []string
	conns     map[string][]*Conn
	listeners map[int]func()
	nextID    int
	closed    bool
}

// New returns a Provider listing devices.
func New(devices ...contracts.Device) *Provider {
	return &Provider{
		devices:   devices,
		refused:   make(map[string]error),
		conns:     make(map[string][]*Conn),
		listeners: make(map[int]func()),
	}
}

// SetDevices replaces the device list.
func (p *Provider) SetDevices(devices ...contracts.Device) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.devices = devices
}

// FailListing makes Devices return err; nil restores normal listing.
func (p *Provider) FailListing(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listErr = err
}

// Refuse makes Connect fail for sourceID with err, or ErrRefused when err is nil.
func (p *Provider) Refuse(sourceID string, err error) {
	if err == nil {
		err = ErrRefused
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refused[sourceID] = err
}

// Accept undoes Refuse for sourceID.
func (p *Provider) Accept(sourceID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.refused, sourceID)
}

func (p *Provider) Devices() ([]contracts.Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]contracts.Device, len(p.devices))
	copy(out, p.devices)
	return out, nil
}

func (p *Provider) Connect(source contracts.Source, handler contracts.CommandHandler) (contracts.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts = append(p.attempts, source.ID)
	if err, ok := p.refused[source.ID]; ok {
		return nil, err
	}
	c := &Conn{provider: p, sourceID: source.ID, handler: handler}
	p.conns[source.ID] = append(p.conns[source.ID], c)
	return c, nil
}

func (p *Provider) Subscribe(onChange func()) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = onChange
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}, nil
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *Provider) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Notify runs every subscribed change listener synchronously.
func (p *Provider) Notify() {
	p.mu.Lock()
	listeners := make([]func(), 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()
	for _, l := range listeners {
		l()
	}
}

// Listeners returns the number of active subscriptions.
func (p *Provider) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// Attempts returns the source IDs passed to Connect, in call order.
func (p *Provider) Attempts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.attempts))
	copy(out, p.attempts)
	return out
}

// Live returns the number of open connections to sourceID.
func (p *Provider) Live(sourceID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.conns[sourceID] {
		if !c.disconnected {
			n++
		}
	}
	return n
}

// Emit delivers raw to every open connection of sourceID.
func (p *Provider) Emit(sourceID string, raw contracts.RawCommand) {
	p.mu.Lock()
	var targets []*Conn
	for _, c := range p.conns[sourceID] {
		if !c.disconnected {
			targets = append(targets, c)
		}
	}
	p.mu.Unlock()
	for _, c := range targets {
		c.handler(raw)
	}
}

// Conn is a fake connection.
type Conn struct {
	provider     *Provider
	sourceID     string
	handler      contracts.CommandHandler
	disconnected bool
}

func (c *Conn) Disconnect() {
	c.provider.mu.Lock()
	defer c.provider.mu.Unlock()
	c.disconnected = true
}

// Source builds a source with a derived ID.
func Source(id, name string) contracts.Source {
	return contracts.Source{ID: id, Name: name}
}

// Device builds a physical device with one entity per source group.
func Device(id, manufacturer string, entities ...[]contracts.Source) contracts.Device {
	d := contracts.Device{ID: id, Name: id, Manufacturer: manufacturer}
	for _, sources := range entities {
		d.Entities = append(d.Entities, contracts.Entity{Sources: sources})
	}
	return d
}
