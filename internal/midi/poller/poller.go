// Package poller detects device-list changes for transports that do not
// deliver hot-plug notifications.
package poller

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// DefaultInterval is used when a non-positive interval is given.
const DefaultInterval = time.Second

// ListFunc reads the current device list.
type ListFunc func() ([]contracts.Device, error)

// Poller re-reads the device list on an interval and notifies subscribers when
// it differs from the previous read, or when reading starts to fail.
type Poller struct {
	list     ListFunc
	interval time.Duration
	logger   contracts.Logger

	mu        sync.Mutex
	listeners map[int]func()
	nextID    int
	last      string
	failing   bool
	running   bool
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New returns a Poller. Polling starts with the first subscription.
func New(list ListFunc, interval time.Duration, logger contracts.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		list:      list,
		interval:  interval,
		logger:    logger,
		listeners: make(map[int]func()),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Subscribe registers onChange until the returned function is called.
func (p *Poller) Subscribe(onChange func()) (func(), error) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = onChange
	start := !p.running
	p.running = true
	p.mu.Unlock()

	if start {
		go p.loop()
	}

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}, nil
}

func (p *Poller) loop() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Check()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.Check()
		}
	}
}

// Check reads the device list once and notifies subscribers on a change.
// It reports whether subscribers were notified.
func (p *Poller) Check() bool {
	devices, err := p.list()

	p.mu.Lock()
	changed := false
	if err != nil {
		if !p.failing {
			p.logger.Warn("MIDI device polling failed", p.logger.Field().Error("error", err))
			changed = true
		}
		p.failing = true
	} else {
		fp := Fingerprint(devices)
		changed = p.failing || fp != p.last
		p.failing = false
		p.last = fp
	}
	var listeners []func()
	if changed {
		for _, l := range p.listeners {
			listeners = append(listeners, l)
		}
	}
	p.mu.Unlock()

	for _, l := range listeners {
		l()
	}
	return changed
}

// Close stops polling and waits for an in-flight check to finish.
func (p *Poller) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)
		p.mu.Lock()
		running := p.running
		p.mu.Unlock()
		if running {
			<-p.done
		}
	})
}

// Fingerprint summarises everything about a device list that affects the
// roster or the set of sources to connect.
func Fingerprint(devices []contracts.Device) string {
	var b strings.Builder
	for _, d := range devices {
		b.WriteString(d.ID)
		b.WriteByte('|')
		b.WriteString(d.Manufacturer)
		b.WriteByte('|')
		b.WriteString(strconv.FormatBool(d.Virtual))
		for _, e := range d.Entities {
			b.WriteString("|[")
			for _, s := range e.Sources {
				b.WriteString(s.ID)
				b.WriteByte('=')
				b.WriteString(s.Name)
				b.WriteByte(';')
			}
			b.WriteByte(']')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
