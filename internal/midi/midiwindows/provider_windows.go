//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/leandrodaf/midibridge/internal/midi/ident"
	"github.com/leandrodaf/midibridge/internal/midi/poller"
	"github.com/leandrodaf/midibridge/internal/wire"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

var (
	ErrForeignSource    = errors.New("source was not produced by the winmm provider")
	ErrProviderIsClosed = errors.New("winmm provider is closed")
)

// Struct representing MIDI device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// winmm passes dwInstance back to the callback; it is a key into live rather
// than a Go pointer.
var (
	callbackOnce sync.Once
	callback     uintptr
	live         sync.Map // uintptr -> *connection
	nextKey      atomic.Uintptr
)

// deviceRef is the Source.Ref of winmm sources.
type deviceRef struct {
	index uint32
}

// Provider exposes winmm MIDI input devices. winmm has no device-change
// notification for MIDI, so changes are detected by polling.
type Provider struct {
	logger contracts.Logger
	poller *poller.Poller

	mu     sync.Mutex
	closed bool
}

// NewProvider creates a winmm provider.
func NewProvider(options contracts.ProviderOptions) (contracts.Provider, error) {
	if err := winmm.Load(); err != nil {
		return nil, fmt.Errorf("loading winmm.dll: %w", err)
	}
	options.Logger.Info("MIDI provider created for Windows")

	p := &Provider{logger: options.Logger}
	p.poller = poller.New(p.Devices, options.PollInterval, options.Logger)
	return p, nil
}

// Devices lists winmm input devices. Each one becomes a device with a single
// entity and source; the manufacturer is derived from the driver IDs.
func (p *Provider) Devices() ([]contracts.Device, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)

	var ids ident.Set
	devices := make([]contracts.Device, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			p.logger.Warn("Failed to get information for MIDI device",
				p.logger.Field().Int("index", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		id := ids.Next("winmm", fmt.Sprint(caps.wMid), fmt.Sprint(caps.wPid), name)
		devices = append(devices, contracts.Device{
			ID:           id,
			Name:         name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
			Entities: []contracts.Entity{{
				Name:    name,
				Sources: []contracts.Source{{ID: id, Name: name, Ref: deviceRef{index: i}}},
			}},
		})
	}
	return devices, nil
}

// Connect opens and starts the winmm device behind source.
func (p *Provider) Connect(source contracts.Source, handler contracts.CommandHandler) (contracts.Connection, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrProviderIsClosed
	}

	ref, ok := source.Ref.(deviceRef)
	if !ok {
		return nil, ErrForeignSource
	}

	callbackOnce.Do(func() {
		callback = windows.NewCallback(midiInCallback)
	})

	c := &connection{logger: p.logger, handler: handler, key: nextKey.Add(1)}
	live.Store(c.key, c)

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&c.handle)),
		uintptr(ref.index),
		callback,
		c.key,
		uintptr(CALLBACK_FUNCTION|MIDI_IO_STATUS),
	)
	if r1 != 0 {
		live.Delete(c.key)
		return nil, fmt.Errorf("failed to open MIDI device %d: %v", ref.index, err)
	}

	r1, _, err = procMidiInStart.Call(uintptr(c.handle))
	if r1 != 0 {
		_, _, _ = procMidiInClose.Call(uintptr(c.handle))
		live.Delete(c.key)
		return nil, fmt.Errorf("failed to start MIDI capture on device %d: %v", ref.index, err)
	}
	return c, nil
}

// Subscribe registers a device-change listener.
func (p *Provider) Subscribe(onChange func()) (func(), error) {
	return p.poller.Subscribe(onChange)
}

// Close stops polling.
func (p *Provider) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.poller.Close()
	return nil
}

type connection struct {
	logger  contracts.Logger
	handler contracts.CommandHandler
	handle  HMIDIIN
	key     uintptr
	once    sync.Once
}

// Disconnect stops capture and closes the device handle.
func (c *connection) Disconnect() {
	c.once.Do(func() {
		if r1, _, err := procMidiInStop.Call(uintptr(c.handle)); r1 != 0 {
			c.logger.Error("Failed to stop MIDI capture", c.logger.Field().String("error", err.Error()))
		}
		if r1, _, err := procMidiInClose.Call(uintptr(c.handle)); r1 != 0 {
			c.logger.Error("Failed to close MIDI device", c.logger.Field().String("error", err.Error()))
		}
		live.Delete(c.key)
	})
}

// midiInCallback processes incoming MIDI messages
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	v, ok := live.Load(dwInstance)
	if !ok {
		return 0
	}
	c := v.(*connection)

	switch wMsg {
	case MIM_OPEN:
		c.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		c.logger.Debug("MIDI device closed")
	case MIM_DATA:
		status := byte(dwParam1 & 0xFF)
		data1 := byte((dwParam1 >> 8) & 0xFF)
		data2 := byte((dwParam1 >> 16) & 0xFF)
		c.handler(wire.FromShort(status, data1, data2, uint64(time.Now().UTC().UnixNano())))
	case MIM_ERROR, MIM_LONGERROR:
		c.logger.Error(fmt.Sprintf("MIDI error: msg=0x%X", wMsg))
	case MIM_MOREDATA:
		c.logger.Debug("Received MIM_MOREDATA message; ignored")
	default:
		c.logger.Warn(fmt.Sprintf("Unknown MIDI message: 0x%X", wMsg))
	}

	return 0
}
