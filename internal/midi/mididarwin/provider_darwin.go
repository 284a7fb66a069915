//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midibridge/internal/midi/ident"
	"github.com/leandrodaf/midibridge/internal/midi/poller"
	"github.com/leandrodaf/midibridge/internal/wire"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for CoreMIDI connection issues.
var (
	ErrCreateInputPort  = errors.New("error creating input port")
	ErrMIDIConnection   = errors.New("error connecting to MIDI source")
	ErrForeignSource    = errors.New("source was not produced by the CoreMIDI provider")
	ErrProviderIsClosed = errors.New("CoreMIDI provider is closed")
)

// portConnection is the handle returned by coremidi.InputPort.Connect.
type portConnection interface {
	Disconnect()
}

// Provider exposes CoreMIDI devices. CoreMIDI setup notifications are not
// surfaced by go-coremidi, so device changes are detected by polling.
type Provider struct {
	logger contracts.Logger
	client coremidi.Client
	poller *poller.Poller

	mu     sync.Mutex
	closed bool
}

// NewProvider creates the CoreMIDI client used for every connection.
func NewProvider(options contracts.ProviderOptions) (contracts.Provider, error) {
	client, err := coremidi.NewClient(options.ClientName)
	if err != nil {
		return nil, fmt.Errorf("creating CoreMIDI client: %w", err)
	}
	options.Logger.Info("CoreMIDI client successfully created",
		options.Logger.Field().String("clientName", options.ClientName))

	p := &Provider{logger: options.Logger, client: client}
	p.poller = poller.New(p.Devices, options.PollInterval, options.Logger)
	return p, nil
}

// Devices lists every CoreMIDI device with its entities and sources.
// Sources that belong to no device (virtual endpoints created by other
// applications) are reported as one virtual device each.
func (p *Provider) Devices() ([]contracts.Device, error) {
	all, err := coremidi.AllDevices()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI devices: %w", err)
	}

	var ids ident.Set
	owned := make(map[coremidi.Source]bool)
	devices := make([]contracts.Device, 0, len(all))
	for _, device := range all {
		d := contracts.Device{
			ID:           ids.Next("coremidi", device.Manufacturer(), device.Name()),
			Name:         device.Name(),
			Manufacturer: device.Manufacturer(),
		}
		entities, err := device.Entities()
		if err != nil {
			p.logger.Warn("failed to read MIDI device entities",
				p.logger.Field().String("device", device.Name()),
				p.logger.Field().Error("error", err))
			devices = append(devices, d)
			continue
		}
		for ei, entity := range entities {
			e := contracts.Entity{Name: entity.Name()}
			sources, err := entity.Sources()
			if err != nil {
				p.logger.Warn("failed to read MIDI entity sources",
					p.logger.Field().String("entity", entity.Name()),
					p.logger.Field().Error("error", err))
			}
			for si, source := range sources {
				owned[source] = true
				e.Sources = append(e.Sources, contracts.Source{
					ID:   fmt.Sprintf("%s/%d/%d", d.ID, ei, si),
					Name: source.Name(),
					Ref:  source,
				})
			}
			d.Entities = append(d.Entities, e)
		}
		devices = append(devices, d)
	}

	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	for _, source := range sources {
		if owned[source] {
			continue
		}
		id := ids.Next("coremidi", "virtual", source.Name())
		devices = append(devices, contracts.Device{
			ID:      id,
			Name:    source.Name(),
			Virtual: true,
			Entities: []contracts.Entity{{
				Name:    source.Name(),
				Sources: []contracts.Source{{ID: id + "/0/0", Name: source.Name(), Ref: source}},
			}},
		})
	}
	return devices, nil
}

// Connect opens a dedicated input port for source. Packets are split into
// raw commands and handed to handler in arrival order.
func (p *Provider) Connect(source contracts.Source, handler contracts.CommandHandler) (contracts.Connection, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrProviderIsClosed
	}

	src, ok := source.Ref.(coremidi.Source)
	if !ok {
		return nil, ErrForeignSource
	}

	var parser wire.Parser
	port, err := coremidi.NewInputPort(p.client, "Input Port "+source.Name, func(_ coremidi.Source, packet coremidi.Packet) {
		ts := uint64(time.Now().UTC().UnixNano())
		for _, cmd := range parser.Feed(packet.Data, ts) {
			handler(cmd)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	conn, err := port.Connect(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMIDIConnection, err)
	}
	return &connection{conn: conn}, nil
}

// Subscribe registers a device-change listener.
func (p *Provider) Subscribe(onChange func()) (func(), error) {
	return p.poller.Subscribe(onChange)
}

// Close stops polling. Open connections are closed by their owners.
func (p *Provider) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.poller.Close()
	return nil
}

type connection struct {
	once sync.Once
	conn portConnection
}

func (c *connection) Disconnect() {
	c.once.Do(c.conn.Disconnect)
}
