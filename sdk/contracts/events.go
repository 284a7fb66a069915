package contracts

// EventKind names one of the events published to an EventSink.
type EventKind string

const (
	DeviceRosterChanged EventKind = "device-roster-changed"
	CommandReceived     EventKind = "command-received"
	ConnectionError     EventKind = "connection-error"
)

// Event is a single notification for the host. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind       EventKind `json:"event"`
	Roster     *Roster   `json:"roster,omitempty"`
	Command    *Command  `json:"command,omitempty"`
	SourceName string    `json:"sourceName,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// EventSink receives events. Publish must not block for long: it is called from
// device-change and per-source callback contexts.
type EventSink interface {
	Publish(event Event)
}
