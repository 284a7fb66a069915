//go:build rtmidi

// Package midirtmidi exposes rtmidi input ports through gomidi.
package midirtmidi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midibridge/internal/midi/ident"
	"github.com/leandrodaf/midibridge/internal/midi/poller"
	"github.com/leandrodaf/midibridge/internal/wire"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// ErrForeignSource is returned for sources listed by another provider.
var ErrForeignSource = errors.New("source was not produced by the rtmidi provider")

// Provider lists rtmidi input ports, one device per port, and polls for
// hot-plug changes.
type Provider struct {
	logger contracts.Logger
	poller *poller.Poller

	mu  sync.Mutex
	drv *rtmididrv.Driver
}

// NewProvider opens the rtmidi driver.
func NewProvider(options contracts.ProviderOptions) (contracts.Provider, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	options.Logger.Info("rtmidi driver opened")

	p := &Provider{logger: options.Logger, drv: drv}
	p.poller = poller.New(p.Devices, options.PollInterval, options.Logger)
	return p, nil
}

// Devices returns one device per input port. rtmidi reports no vendor data,
// so the port name doubles as the manufacturer; through and dummy ports are
// marked virtual.
func (p *Provider) Devices() ([]contracts.Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ins, err := p.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("listing rtmidi inputs: %w", err)
	}

	var ids ident.Set
	devices := make([]contracts.Device, 0, len(ins))
	for _, in := range ins {
		name := in.String()
		id := ids.Next("rtmidi", name)
		devices = append(devices, contracts.Device{
			ID:           id,
			Name:         name,
			Manufacturer: ManufacturerOf(name),
			Virtual:      IsVirtualPort(name),
			Entities: []contracts.Entity{{
				Name:    name,
				Sources: []contracts.Source{{ID: id, Name: name, Ref: in}},
			}},
		})
	}
	return devices, nil
}

// Connect opens the port and listens for messages, sysex included.
func (p *Provider) Connect(source contracts.Source, handler contracts.CommandHandler) (contracts.Connection, error) {
	in, ok := source.Ref.(drivers.In)
	if !ok {
		return nil, ErrForeignSource
	}
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("open %q: %w", source.Name, err)
	}

	var parser wire.Parser
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		for _, cmd := range parser.Feed(msg, uint64(time.Now().UTC().UnixNano())) {
			handler(cmd)
		}
	}, midi.UseSysEx(), midi.HandleError(func(listenErr error) {
		p.logger.Warn("rtmidi listener error",
			p.logger.Field().String("source", source.Name),
			p.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("listen %q: %w", source.Name, err)
	}
	return &connection{in: in, stop: stop}, nil
}

// Subscribe registers a device-change listener.
func (p *Provider) Subscribe(onChange func()) (func(), error) {
	return p.poller.Subscribe(onChange)
}

// Close stops polling and closes the driver.
func (p *Provider) Close() error {
	p.poller.Close()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drv.Close()
}

type connection struct {
	once sync.Once
	in   drivers.In
	stop func()
}

func (c *connection) Disconnect() {
	c.once.Do(func() {
		c.stop()
		_ = c.in.Close()
	})
}
