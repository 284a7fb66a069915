package contracts

// Device is a MIDI-capable unit exposed by the platform provider.
type Device struct {
	ID           string   // Platform identity, stable while the device is attached.
	Name         string   // Device display name.
	Manufacturer string   // Manufacturer name, empty when the platform has none.
	Virtual      bool     // True for software endpoints with no physical device.
	Entities     []Entity // Logical sub-units, in platform order.
}

// Entity groups the input sources of a Device.
type Entity struct {
	Name    string
	Sources []Source
}

// Source is a connectable input endpoint.
type Source struct {
	ID   string // Identity used by the connection registry.
	Name string // Display name, may be empty.
	Ref  any    // Platform handle, opaque outside the provider that produced it.
}

// DisplayName returns the source name or UnknownSourceName when it has none.
func (s Source) DisplayName() string {
	if s.Name == "" {
		return UnknownSourceName
	}
	return s.Name
}

// Roster maps a positional index to the manufacturer name of each valid device.
type Roster struct {
	Devices map[string]string `json:"devices"`
}

const (
	// UnknownSourceName replaces an absent source display name in events.
	UnknownSourceName = "Unknown"
	// DeviceListSourceName is the source name on errors raised while reading the device list.
	DeviceListSourceName = "DeviceList"
)
