package contracts

import "time"

// Backend selects the platform MIDI provider.
type Backend string

const (
	// AutoBackend picks the native provider for the running operating system.
	AutoBackend Backend = "auto"
	// CoreMIDIBackend uses CoreMIDI (macOS).
	CoreMIDIBackend Backend = "coremidi"
	// WinMMBackend uses the winmm multimedia API (Windows).
	WinMMBackend Backend = "winmm"
	// RtMidiBackend uses rtmidi through gomidi (requires the rtmidi build tag).
	RtMidiBackend Backend = "rtmidi"
)

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// ProviderOptions is what a provider initializer receives.
type ProviderOptions struct {
	Logger       Logger
	ClientName   string
	PollInterval time.Duration // Device-list polling period for providers without native notifications.
}

// ClientOptions defines the configuration options for the MIDI bridge.
type ClientOptions struct {
	Logger          Logger          // Logger for logging events and errors.
	LogLevel        LogLevel        // Level of logging to use.
	LogFilePath     string          // File path for logging if file logging is enabled.
	CoreMIDIConfig  *CoreMIDIConfig // Configuration specific to CoreMIDI.
	EventSink       EventSink       // Receiver of every published event.
	Provider        Provider        // Injected provider; when nil one is selected from Backend.
	Backend         Backend         // Provider to build when Provider is nil.
	PollInterval    time.Duration   // Hot-plug polling period.
	PruneRemoved    bool            // Disconnect sources that vanish from a scan.
	AllowDuplicates bool            // Reconnect already connected sources on every scan.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the MIDI bridge.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the MIDI bridge.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs log output to path.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the MIDI bridge.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithEventSink sets the receiver of roster, command and error events.
func WithEventSink(sink EventSink) Option {
	return func(opts *ClientOptions) {
		opts.EventSink = sink
	}
}

// WithProvider injects a platform provider, bypassing backend selection.
func WithProvider(p Provider) Option {
	return func(opts *ClientOptions) {
		opts.Provider = p
	}
}

// WithBackend selects which provider to build.
func WithBackend(b Backend) Option {
	return func(opts *ClientOptions) {
		opts.Backend = b
	}
}

// WithPollInterval sets the hot-plug polling period.
func WithPollInterval(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.PollInterval = d
	}
}

// WithPruneRemoved disconnects sources that are no longer listed after a scan.
func WithPruneRemoved(prune bool) Option {
	return func(opts *ClientOptions) {
		opts.PruneRemoved = prune
	}
}

// WithDuplicateConnections reconnects every valid source on every scan, even
// when a connection to it is already held.
func WithDuplicateConnections(allow bool) Option {
	return func(opts *ClientOptions) {
		opts.AllowDuplicates = allow
	}
}
