package contracts

// Raw command-type tags as they appear on the wire. Channel voice tags have the
// channel nibble cleared.
const (
	RawNoteOff                    byte = 0x80
	RawNoteOn                     byte = 0x90
	RawPolyphonicKeyPressure      byte = 0xA0
	RawControlChange              byte = 0xB0
	RawProgramChange              byte = 0xC0
	RawChannelPressure            byte = 0xD0
	RawPitchWheelChange           byte = 0xE0
	RawSystemMessage              byte = 0xF0
	RawSystemExclusive            byte = 0xF0
	RawSystemTimecodeQuarterFrame byte = 0xF1
	RawSystemSongPositionPointer  byte = 0xF2
	RawSystemSongSelect           byte = 0xF3
	RawSystemTuneRequest          byte = 0xF6
	RawSystemTimingClock          byte = 0xF8
	RawSystemStartSequence        byte = 0xFA
	RawSystemContinueSequence     byte = 0xFB
	RawSystemStopSequence         byte = 0xFC
	RawSystemKeepAlive            byte = 0xFE
)

// RawCommand is one command as delivered by a provider, before decoding.
type RawCommand struct {
	Type      byte   // Command-type tag, see the Raw* constants.
	Data1     byte   // First data byte, zero when the command has none.
	Data2     byte   // Second data byte, zero when the command has none.
	Timestamp uint64 // Arrival time in nanoseconds since the Unix epoch.
}

// CommandTag names a decoded command type.
type CommandTag string

const (
	NoteOff                    CommandTag = "note-off"
	NoteOn                     CommandTag = "note-on"
	PolyphonicKeyPressure      CommandTag = "polyphonic-key-pressure"
	ControlChange              CommandTag = "control-change"
	ProgramChange              CommandTag = "program-change"
	ChannelPressure            CommandTag = "channel-pressure"
	PitchWheelChange           CommandTag = "pitch-wheel-change"
	SystemMessage              CommandTag = "system-message"
	SystemExclusive            CommandTag = "system-exclusive"
	SystemTimecodeQuarterFrame CommandTag = "system-timecode-quarter-frame"
	SystemSongPositionPointer  CommandTag = "system-song-position-pointer"
	SystemSongSelect           CommandTag = "system-song-select"
	SystemTuneRequest          CommandTag = "system-tune-request"
	SystemTimingClock          CommandTag = "system-timing-clock"
	SystemStartSequence        CommandTag = "system-start-sequence"
	SystemContinueSequence     CommandTag = "system-continue-sequence"
	SystemStopSequence         CommandTag = "system-stop-sequence"
	SystemKeepAlive            CommandTag = "system-keep-alive"
	// Unrecognized is returned for any raw tag outside the vocabulary above.
	Unrecognized CommandTag = "unrecognized"
)

// Command is a decoded MIDI command.
type Command struct {
	Tag       CommandTag `json:"command"`
	DataByte1 byte       `json:"dataByte1"`
	DataByte2 byte       `json:"dataByte2"`
	Timestamp uint64     `json:"timestamp,omitempty"`
}
