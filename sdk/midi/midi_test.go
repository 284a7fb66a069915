package midi

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/midibridge/internal/logger"
	"github.com/leandrodaf/midibridge/internal/midi/midifake"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() contracts.Logger {
	return logger.NewFromZap(zap.NewNop())
}

func TestApplyDefaultOptions(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(nopLogger()))
	require.NoError(t, err)

	assert.Equal(t, DefaultClientName, opts.CoreMIDIConfig.ClientName)
	assert.Equal(t, contracts.AutoBackend, opts.Backend)
	assert.Equal(t, DefaultPollInterval, opts.PollInterval)
	assert.IsType(t, &LogSink{}, opts.EventSink)
	assert.False(t, opts.PruneRemoved)
	assert.False(t, opts.AllowDuplicates)
}

func TestApplyDefaultOptions_Overrides(t *testing.T) {
	sink := FuncSink(func(contracts.Event) {})
	opts, err := applyDefaultOptions(
		contracts.WithLogger(nopLogger()),
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: "Trainer"}),
		contracts.WithBackend(contracts.RtMidiBackend),
		contracts.WithPollInterval(250*time.Millisecond),
		contracts.WithEventSink(sink),
		contracts.WithPruneRemoved(true),
		contracts.WithDuplicateConnections(true),
	)
	require.NoError(t, err)

	assert.Equal(t, "Trainer", opts.CoreMIDIConfig.ClientName)
	assert.Equal(t, contracts.RtMidiBackend, opts.Backend)
	assert.Equal(t, 250*time.Millisecond, opts.PollInterval)
	assert.NotNil(t, opts.EventSink)
	assert.True(t, opts.PruneRemoved)
	assert.True(t, opts.AllowDuplicates)
}

func TestResolveBackend(t *testing.T) {
	assert.Equal(t, contracts.CoreMIDIBackend, ResolveBackend(contracts.AutoBackend, "darwin"))
	assert.Equal(t, contracts.WinMMBackend, ResolveBackend("", "windows"))
	assert.Equal(t, contracts.RtMidiBackend, ResolveBackend(contracts.AutoBackend, "linux"))
	assert.Equal(t, contracts.RtMidiBackend, ResolveBackend(contracts.RtMidiBackend, "darwin"))
}

func TestNewProvider_UnknownBackend(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(nopLogger()), contracts.WithBackend("alsa"))
	require.NoError(t, err)

	_, err = NewProvider(&opts)
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestNewBridge_WithInjectedProvider(t *testing.T) {
	p := midifake.New(
		midifake.Device("acme", "Acme", []contracts.Source{midifake.Source("k", "Keys")}),
		midifake.Device("none", "", []contracts.Source{midifake.Source("n", "None")}),
	)
	sink := NewChannelSink(8, nopLogger())

	b, err := NewBridge(
		contracts.WithLogger(nopLogger()),
		contracts.WithProvider(p),
		contracts.WithEventSink(sink),
	)
	require.NoError(t, err)
	require.NoError(t, b.Start())
	defer b.Stop()

	p.Notify()
	p.Emit("k", contracts.RawCommand{Type: contracts.RawNoteOn, Data1: 60, Data2: 127})

	roster := <-sink.Events()
	assert.Equal(t, contracts.DeviceRosterChanged, roster.Kind)
	assert.Equal(t, map[string]string{"0": "Acme"}, roster.Roster.Devices)

	cmd := <-sink.Events()
	assert.Equal(t, contracts.CommandReceived, cmd.Kind)
	assert.Equal(t, contracts.NoteOn, cmd.Command.Tag)

	listed, err := b.ListDevices()
	require.NoError(t, err)
	assert.Equal(t, roster.Roster.Devices, listed.Devices)
}

func TestChannelSink_DropsWhenFull(t *testing.T) {
	sink := NewChannelSink(1, nopLogger())

	sink.Publish(contracts.Event{Kind: contracts.CommandReceived})
	sink.Publish(contracts.Event{Kind: contracts.ConnectionError})

	assert.Len(t, sink.Events(), 1)
	assert.Equal(t, contracts.CommandReceived, (<-sink.Events()).Kind)
}

func TestJSONSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(&buf)

	sink.Publish(contracts.Event{
		Kind:       contracts.CommandReceived,
		SourceName: "Keys",
		Command:    &contracts.Command{Tag: contracts.NoteOn, DataByte1: 60, DataByte2: 127},
	})
	sink.Publish(contracts.Event{Kind: contracts.ConnectionError, SourceName: contracts.UnknownSourceName, Error: "busy"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"event":"command-received","sourceName":"Keys","command":{"command":"note-on","dataByte1":60,"dataByte2":127}}`, lines[0])

	var ev contracts.Event
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &ev))
	assert.Equal(t, "Unknown", ev.SourceName)
	assert.Equal(t, "busy", ev.Error)
}
