package midi

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// FuncSink adapts a function to contracts.EventSink.
type FuncSink func(contracts.Event)

// Publish calls f(event).
func (f FuncSink) Publish(event contracts.Event) {
	f(event)
}

// ChannelSink delivers events to a buffered channel without blocking. When the
// buffer is full the event is dropped and a warning is logged.
type ChannelSink struct {
	events chan contracts.Event
	logger contracts.Logger
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int, logger contracts.Logger) *ChannelSink {
	return &ChannelSink{events: make(chan contracts.Event, buffer), logger: logger}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan contracts.Event {
	return s.events
}

// Publish implements contracts.EventSink.
func (s *ChannelSink) Publish(event contracts.Event) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("Event buffer full; dropping MIDI event",
			s.logger.Field().String("event", string(event.Kind)))
	}
}

// JSONSink writes each event as one line of JSON.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink creates a JSONSink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

// Publish implements contracts.EventSink. Write errors are dropped.
func (s *JSONSink) Publish(event contracts.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(event)
}

// LogSink logs every event; it is the default when no sink is configured.
type LogSink struct {
	logger contracts.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger contracts.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish implements contracts.EventSink.
func (s *LogSink) Publish(event contracts.Event) {
	f := s.logger.Field()
	switch event.Kind {
	case contracts.DeviceRosterChanged:
		s.logger.Info("MIDI devices changed", f.Int("devices", len(event.Roster.Devices)))
	case contracts.CommandReceived:
		s.logger.Debug("MIDI command",
			f.String("source", event.SourceName),
			f.String("command", string(event.Command.Tag)),
			f.Uint8("dataByte1", event.Command.DataByte1),
			f.Uint8("dataByte2", event.Command.DataByte2))
	case contracts.ConnectionError:
		s.logger.Warn("MIDI connection error",
			f.String("source", event.SourceName),
			f.String("error", event.Error))
	}
}
