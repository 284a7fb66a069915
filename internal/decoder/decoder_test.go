package decoder

import (
	"testing"

	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/stretchr/testify/assert"
)

func TestDecode_KnownTags(t *testing.T) {
	cases := []struct {
		raw  byte
		want contracts.CommandTag
	}{
		{contracts.RawNoteOff, contracts.NoteOff},
		{contracts.RawNoteOn, contracts.NoteOn},
		{contracts.RawPolyphonicKeyPressure, contracts.PolyphonicKeyPressure},
		{contracts.RawControlChange, contracts.ControlChange},
		{contracts.RawProgramChange, contracts.ProgramChange},
		{contracts.RawChannelPressure, contracts.ChannelPressure},
		{contracts.RawPitchWheelChange, contracts.PitchWheelChange},
		{contracts.RawSystemExclusive, contracts.SystemExclusive},
		{contracts.RawSystemTimecodeQuarterFrame, contracts.SystemTimecodeQuarterFrame},
		{contracts.RawSystemSongPositionPointer, contracts.SystemSongPositionPointer},
		{contracts.RawSystemSongSelect, contracts.SystemSongSelect},
		{contracts.RawSystemTuneRequest, contracts.SystemTuneRequest},
		{contracts.RawSystemTimingClock, contracts.SystemTimingClock},
		{contracts.RawSystemStartSequence, contracts.SystemStartSequence},
		{contracts.RawSystemContinueSequence, contracts.SystemContinueSequence},
		{contracts.RawSystemStopSequence, contracts.SystemStopSequence},
		{contracts.RawSystemKeepAlive, contracts.SystemKeepAlive},
	}
	assert.Len(t, cases, 17)

	for _, tc := range cases {
		got := Decode(contracts.RawCommand{Type: tc.raw})
		assert.Equal(t, tc.want, got.Tag, "raw 0x%X", tc.raw)
	}
}

func TestDecode_Unrecognized(t *testing.T) {
	var unrecognized []byte
	for v := 0x00; v <= 0x7F; v++ {
		unrecognized = append(unrecognized, byte(v))
	}
	unrecognized = append(unrecognized, 0xF4, 0xF5, 0xF7, 0xF9, 0xFD, 0xFF)

	for _, v := range unrecognized {
		got := Decode(contracts.RawCommand{Type: v, Data1: 1, Data2: 2})
		assert.Equal(t, contracts.Unrecognized, got.Tag, "raw 0x%X", v)
		assert.Equal(t, byte(1), got.DataByte1)
		assert.Equal(t, byte(2), got.DataByte2)
	}
}

func TestDecode_NoteOnDataBytes(t *testing.T) {
	got := Decode(contracts.RawCommand{Type: contracts.RawNoteOn, Data1: 60, Data2: 127, Timestamp: 42})

	assert.Equal(t, contracts.Command{
		Tag:       contracts.NoteOn,
		DataByte1: 60,
		DataByte2: 127,
		Timestamp: 42,
	}, got)
}

func TestDecode_OutOfRangeDataPassedThrough(t *testing.T) {
	got := Decode(contracts.RawCommand{Type: contracts.RawControlChange, Data1: 200, Data2: 255})

	assert.Equal(t, byte(200), got.DataByte1)
	assert.Equal(t, byte(255), got.DataByte2)
}
