// Package dispatch publishes bridge events to the host's event sink.
package dispatch

import (
	"fmt"

	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// Dispatcher fans roster, command and error events out to an EventSink.
// Every call publishes exactly one event on the caller's goroutine, so events
// raised from one connection callback reach the sink in callback order.
type Dispatcher struct {
	sink   contracts.EventSink
	logger contracts.Logger
}

// New returns a Dispatcher publishing to sink.
func New(sink contracts.EventSink, logger contracts.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, logger: logger}
}

// RosterChanged publishes a device-roster-changed event.
func (d *Dispatcher) RosterChanged(roster contracts.Roster) {
	d.publish(contracts.Event{Kind: contracts.DeviceRosterChanged, Roster: &roster})
}

// CommandReceived publishes a command-received event.
func (d *Dispatcher) CommandReceived(cmd contracts.Command, sourceName string) {
	d.publish(contracts.Event{Kind: contracts.CommandReceived, Command: &cmd, SourceName: sourceName})
}

// ConnectionError publishes a connection-error event.
func (d *Dispatcher) ConnectionError(sourceName string, err error) {
	d.publish(contracts.Event{Kind: contracts.ConnectionError, SourceName: sourceName, Error: describe(err)})
}

func (d *Dispatcher) publish(ev contracts.Event) {
	if d.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event sink panicked",
				d.logger.Field().String("event", string(ev.Kind)),
				d.logger.Field().String("panic", fmt.Sprint(r)))
		}
	}()
	d.sink.Publish(ev)
}

func describe(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
