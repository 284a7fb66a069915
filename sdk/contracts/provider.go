package contracts

// CommandHandler receives each raw command arriving on a connection, in wire order.
type CommandHandler func(cmd RawCommand)

// Connection is a live subscription to one source.
type Connection interface {
	Disconnect()
}

// Provider is the platform MIDI object model consumed by the bridge. One
// provider is created at startup and closed at process exit.
type Provider interface {
	// Devices returns the current device list in platform order.
	Devices() ([]Device, error)
	// Connect subscribes handler to source.
	Connect(source Source, handler CommandHandler) (Connection, error)
	// Subscribe installs onChange as a device-list change listener until the
	// returned function is called.
	Subscribe(onChange func()) (unsubscribe func(), err error)
	// Close releases platform resources.
	Close() error
}

// Bridge is the public surface of the MIDI bridge.
type Bridge interface {
	Start() error                 // Starts watching for device changes.
	ListDevices() (Roster, error) // Recomputes the roster of valid devices.
	Stop() error                  // Stops watching and releases every connection.
}
