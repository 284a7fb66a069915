package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/midibridge/internal/connection"
	"github.com/leandrodaf/midibridge/internal/devicefilter"
	"github.com/leandrodaf/midibridge/internal/dispatch"
	"github.com/leandrodaf/midibridge/internal/logger"
	"github.com/leandrodaf/midibridge/internal/midi/midifake"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sink struct {
	mu     sync.Mutex
	events []contracts.Event
}

func (s *sink) Publish(ev contracts.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *sink) ofKind(kind contracts.EventKind) []contracts.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []contracts.Event
	for _, ev := range s.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	provider *midifake.Provider
	sink     *sink
	conns    *connection.Manager
	monitor  *Monitor
}

func newFixture(p *midifake.Provider, opts ...Option) *fixture {
	log := logger.NewFromZap(zap.NewNop())
	s := &sink{}
	d := dispatch.New(s, log)
	conns := connection.NewManager(p, d, log)
	return &fixture{
		provider: p,
		sink:     s,
		conns:    conns,
		monitor:  New(p, conns, d, log, opts...),
	}
}

func scenarioDevices() []contracts.Device {
	acme := midifake.Device("acme", "Acme",
		[]contracts.Source{midifake.Source("acme-1", "Acme Keys")},
		[]contracts.Source{midifake.Source("acme-2", "Acme Pads")},
	)
	virtual := midifake.Device("virt", "X", []contracts.Source{midifake.Source("virt-1", "Virtual")})
	virtual.Virtual = true
	empty := midifake.Device("empty", "Y")
	anon := midifake.Device("anon", "", []contracts.Source{midifake.Source("anon-1", "Anon")})
	return []contracts.Device{acme, virtual, empty, anon}
}

func TestMonitor_ScanScenario(t *testing.T) {
	f := newFixture(midifake.New(scenarioDevices()...))

	require.NoError(t, f.monitor.Scan())

	rosters := f.sink.ofKind(contracts.DeviceRosterChanged)
	require.Len(t, rosters, 1)
	assert.Equal(t, map[string]string{"0": "Acme"}, rosters[0].Roster.Devices)
	assert.Equal(t, []string{"acme-1", "acme-2"}, f.provider.Attempts())
}

func TestMonitor_RosterMatchesConnectedSet(t *testing.T) {
	devices := scenarioDevices()
	f := newFixture(midifake.New(devices...))

	require.NoError(t, f.monitor.Scan())

	roster := f.sink.ofKind(contracts.DeviceRosterChanged)[0].Roster
	assert.Equal(t, devicefilter.BuildRoster(devices), *roster)

	var want []string
	for _, d := range devicefilter.Valid(devices) {
		for _, e := range d.Entities {
			for _, s := range e.Sources {
				want = append(want, s.ID)
			}
		}
	}
	assert.Equal(t, want, f.provider.Attempts())
}

func TestMonitor_ConnectFailureDoesNotStopScan(t *testing.T) {
	p := midifake.New(midifake.Device("dev", "Acme",
		[]contracts.Source{midifake.Source("s1", "First"), midifake.Source("s2", "Second")},
	))
	p.Refuse("s1", nil)
	f := newFixture(p)

	require.NoError(t, f.monitor.Scan())

	assert.Equal(t, []string{"s1", "s2"}, p.Attempts())
	errs := f.sink.ofKind(contracts.ConnectionError)
	require.Len(t, errs, 1)
	assert.Equal(t, "First", errs[0].SourceName)

	p.Emit("s2", contracts.RawCommand{Type: contracts.RawNoteOn, Data1: 60, Data2: 127})
	cmds := f.sink.ofKind(contracts.CommandReceived)
	require.Len(t, cmds, 1)
	assert.Equal(t, "Second", cmds[0].SourceName)
	assert.Equal(t, contracts.NoteOn, cmds[0].Command.Tag)
}

func TestMonitor_EnumerationFailureReportedOnce(t *testing.T) {
	p := midifake.New(scenarioDevices()...)
	p.FailListing(errors.New("server died"))
	f := newFixture(p)

	err := f.monitor.Scan()
	require.ErrorIs(t, err, contracts.ErrEnumeration)

	errs := f.sink.ofKind(contracts.ConnectionError)
	require.Len(t, errs, 1)
	assert.Equal(t, contracts.DeviceListSourceName, errs[0].SourceName)
	assert.Contains(t, errs[0].Error, "server died")
	assert.Empty(t, f.sink.ofKind(contracts.DeviceRosterChanged))
	assert.Empty(t, p.Attempts())

	p.FailListing(nil)
	require.NoError(t, f.monitor.Scan())
	assert.Len(t, f.sink.ofKind(contracts.DeviceRosterChanged), 1)
}

func TestMonitor_SubscriptionDrivesScans(t *testing.T) {
	p := midifake.New()
	f := newFixture(p)

	require.NoError(t, f.monitor.Start())
	assert.ErrorIs(t, f.monitor.Start(), ErrAlreadyStarted)
	assert.Empty(t, f.sink.events, "no scan before the first notification")

	p.SetDevices(scenarioDevices()...)
	p.Notify()
	assert.Len(t, f.sink.ofKind(contracts.DeviceRosterChanged), 1)

	f.monitor.Stop()
	assert.Equal(t, 0, p.Listeners())
	p.Notify()
	assert.Len(t, f.sink.ofKind(contracts.DeviceRosterChanged), 1)
}

func TestMonitor_RepeatedScansKeepOneConnection(t *testing.T) {
	f := newFixture(midifake.New(scenarioDevices()...))

	require.NoError(t, f.monitor.Scan())
	require.NoError(t, f.monitor.Scan())

	assert.Equal(t, []string{"acme-1", "acme-2"}, f.provider.Attempts())
	assert.Equal(t, 2, f.conns.Len())
	assert.Len(t, f.sink.ofKind(contracts.DeviceRosterChanged), 2)
}

func TestMonitor_PruneRemoved(t *testing.T) {
	p := midifake.New(scenarioDevices()...)
	f := newFixture(p, PruneRemoved(true))
	require.NoError(t, f.monitor.Scan())

	p.SetDevices()
	require.NoError(t, f.monitor.Scan())

	assert.Equal(t, 0, f.conns.Len())
	assert.Equal(t, 0, p.Live("acme-1"))
	last := f.sink.ofKind(contracts.DeviceRosterChanged)[1]
	assert.Empty(t, last.Roster.Devices)
}

func TestMonitor_WithoutPruneRetiresStaleConnections(t *testing.T) {
	p := midifake.New(scenarioDevices()...)
	f := newFixture(p)
	require.NoError(t, f.monitor.Scan())

	p.SetDevices()
	require.NoError(t, f.monitor.Scan())

	assert.Equal(t, 0, f.conns.Len())
	assert.Equal(t, 1, p.Live("acme-1"), "retired handles stay open")

	f.conns.Close()
	assert.Equal(t, 0, p.Live("acme-1"))
}

func TestMonitor_ReplugReconnects(t *testing.T) {
	for _, prune := range []bool{false, true} {
		p := midifake.New()
		f := newFixture(p, PruneRemoved(prune))
		keys := midifake.Device("acme", "Acme", []contracts.Source{midifake.Source("k", "Keys")})

		p.SetDevices(keys)
		require.NoError(t, f.monitor.Scan())
		p.SetDevices()
		require.NoError(t, f.monitor.Scan())
		p.SetDevices(keys)
		require.NoError(t, f.monitor.Scan())

		assert.Equal(t, []string{"k", "k"}, p.Attempts(), "prune=%v", prune)
		assert.True(t, f.conns.Connected("k"))
		assert.Equal(t, 1, f.conns.Len())

		p.Emit("k", contracts.RawCommand{Type: contracts.RawNoteOn, Data1: 60, Data2: 100})
		cmds := f.sink.ofKind(contracts.CommandReceived)
		require.NotEmpty(t, cmds)
		assert.Equal(t, "Keys", cmds[len(cmds)-1].SourceName)
	}
}

func TestMonitor_FailedSourceRetriedNextScan(t *testing.T) {
	p := midifake.New(scenarioDevices()...)
	p.Refuse("acme-2", nil)
	f := newFixture(p)
	require.NoError(t, f.monitor.Scan())
	assert.False(t, f.conns.Connected("acme-2"))

	p.Accept("acme-2")
	require.NoError(t, f.monitor.Scan())

	assert.Equal(t, []string{"acme-1", "acme-2", "acme-2"}, p.Attempts())
	assert.True(t, f.conns.Connected("acme-2"))
}

func TestMonitor_ConnectEveryScan(t *testing.T) {
	p := midifake.New(scenarioDevices()...)
	log := logger.NewFromZap(zap.NewNop())
	d := dispatch.New(&sink{}, log)
	conns := connection.NewManager(p, d, log, connection.AllowDuplicates(true))
	m := New(p, conns, d, log, ConnectEveryScan(true))

	require.NoError(t, m.Scan())
	require.NoError(t, m.Scan())

	assert.Equal(t, []string{"acme-1", "acme-2", "acme-1", "acme-2"}, p.Attempts())
	assert.Equal(t, 4, conns.Len())
}

type blockingPlatform struct {
	*midifake.Provider
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingPlatform) Devices() ([]contracts.Device, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.Provider.Devices()
}

func TestMonitor_StopWaitsForScanInProgress(t *testing.T) {
	p := midifake.New(scenarioDevices()...)
	bp := &blockingPlatform{Provider: p, entered: make(chan struct{}), release: make(chan struct{})}
	log := logger.NewFromZap(zap.NewNop())
	s := &sink{}
	d := dispatch.New(s, log)
	conns := connection.NewManager(p, d, log)
	m := New(bp, conns, d, log)
	require.NoError(t, m.Start())

	go p.Notify()
	<-bp.entered

	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a scan was in progress")
	case <-time.After(20 * time.Millisecond):
	}

	close(bp.release)
	<-stopped
	assert.Len(t, s.ofKind(contracts.DeviceRosterChanged), 1)
	assert.Equal(t, 2, conns.Len())
}
