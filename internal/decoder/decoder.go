// Package decoder turns raw provider commands into tagged commands.
package decoder

import "github.com/leandrodaf/midibridge/sdk/contracts"

// tags maps every raw command-type tag to its name. 0xF0 is shared by the
// system-message and system-exclusive raw constants; on the wire it always
// opens a sysex, so it decodes as system-exclusive.
var tags = map[byte]contracts.CommandTag{
	contracts.RawNoteOff:                    contracts.NoteOff,
	contracts.RawNoteOn:                     contracts.NoteOn,
	contracts.RawPolyphonicKeyPressure:      contracts.PolyphonicKeyPressure,
	contracts.RawControlChange:              contracts.ControlChange,
	contracts.RawProgramChange:              contracts.ProgramChange,
	contracts.RawChannelPressure:            contracts.ChannelPressure,
	contracts.RawPitchWheelChange:           contracts.PitchWheelChange,
	contracts.RawSystemExclusive:            contracts.SystemExclusive,
	contracts.RawSystemTimecodeQuarterFrame: contracts.SystemTimecodeQuarterFrame,
	contracts.RawSystemSongPositionPointer:  contracts.SystemSongPositionPointer,
	contracts.RawSystemSongSelect:           contracts.SystemSongSelect,
	contracts.RawSystemTuneRequest:          contracts.SystemTuneRequest,
	contracts.RawSystemTimingClock:          contracts.SystemTimingClock,
	contracts.RawSystemStartSequence:        contracts.SystemStartSequence,
	contracts.RawSystemContinueSequence:     contracts.SystemContinueSequence,
	contracts.RawSystemStopSequence:         contracts.SystemStopSequence,
	contracts.RawSystemKeepAlive:            contracts.SystemKeepAlive,
}

// Decode maps raw to a Command. Unknown tags yield contracts.Unrecognized.
// Data bytes are copied as-is.
func Decode(raw contracts.RawCommand) contracts.Command {
	tag, ok := tags[raw.Type]
	if !ok {
		tag = contracts.Unrecognized
	}
	return contracts.Command{
		Tag:       tag,
		DataByte1: raw.Data1,
		DataByte2: raw.Data2,
		Timestamp: raw.Timestamp,
	}
}
