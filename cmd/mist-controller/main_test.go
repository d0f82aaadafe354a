package main

import (
	"context"
	"math"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/mist-controller/internal/actuator"
	"github.com/sweeney/mist-controller/internal/display"
	"github.com/sweeney/mist-controller/internal/gpio"
	"github.com/sweeney/mist-controller/internal/logic"
	"github.com/sweeney/mist-controller/internal/mqtt"
	"github.com/sweeney/mist-controller/internal/sensor"
	"github.com/sweeney/mist-controller/internal/status"
)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use.
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

func newTestTracker() *status.Tracker {
	return status.NewTracker(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), status.Config{
		Preset:   50.0,
		PumpDuty: 217,
	})
}

func repeatBool(sample bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = sample
	}
	return out
}

// --- acquirer ---

func TestAcquireTickStoresCalibratedReading(t *testing.T) {
	tracker := newTestTracker()
	a := &acquirer{
		reader:  sensor.NewFakeReader([]sensor.Reading{{Temperature: 25.0, Humidity: 60.0}}),
		offset:  -10.0,
		tracker: tracker,
	}

	a.tick()

	r, ok := tracker.Reading()
	if !ok {
		t.Fatal("expected a reading after one tick")
	}
	if r.Temperature != 25.0 {
		t.Errorf("Temperature: got %.1f, want 25.0", r.Temperature)
	}
	if r.Humidity != 50.0 {
		t.Errorf("Humidity: got %.1f, want 50.0 (60.0 with -10 offset)", r.Humidity)
	}
}

func TestAcquireTickRetainsLastGoodOnError(t *testing.T) {
	tracker := newTestTracker()
	reader := sensor.NewFakeReader([]sensor.Reading{
		{Temperature: 22.0, Humidity: 55.0},
		{Temperature: 99.0, Humidity: 99.0},
	})
	reader.Errs = []error{nil, errBus}
	a := &acquirer{reader: reader, tracker: tracker}

	a.tick()
	a.tick()

	r, ok := tracker.Reading()
	if !ok {
		t.Fatal("expected the first reading to survive the failed second read")
	}
	if r.Humidity != 55.0 {
		t.Errorf("Humidity: got %.1f, want 55.0", r.Humidity)
	}
}

func TestAcquireTickDiscardsInvalid(t *testing.T) {
	tracker := newTestTracker()
	a := &acquirer{
		reader:  sensor.NewFakeReader([]sensor.Reading{{Temperature: math.NaN(), Humidity: 50.0}}),
		tracker: tracker,
	}

	a.tick()

	if _, ok := tracker.Reading(); ok {
		t.Error("expected NaN reading to be discarded")
	}
}

var errBus = &sensorError{"i2c bus fault"}

type sensorError struct{ msg string }

func (e *sensorError) Error() string { return e.msg }

// --- levelMonitor ---

func newLevelMonitor(samples []bool, threshold int) (*levelMonitor, *status.Tracker, *mqtt.FakePublisher) {
	tracker := newTestTracker()
	pub := mqtt.NewFakePublisher()
	m := &levelMonitor{
		reader:  gpio.NewFakeLevelReader(samples),
		deb:     logic.NewDebouncer(threshold),
		tracker: tracker,
		pub:     pub,
		now:     fakeClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), time.Second),
	}
	return m, tracker, pub
}

func TestLevelTickBelowThresholdNoEvent(t *testing.T) {
	m, tracker, pub := newLevelMonitor(repeatBool(true, 2), 3)

	m.tick()
	m.tick()

	if tracker.Empty() {
		t.Error("two high samples must not flip a threshold-3 debouncer")
	}
	if len(pub.Events) != 0 {
		t.Errorf("expected 0 events, got %d", len(pub.Events))
	}
}

func TestLevelTickDebouncedTransition(t *testing.T) {
	m, tracker, pub := newLevelMonitor(repeatBool(true, 5), 3)

	for i := 0; i < 5; i++ {
		m.tick()
	}

	if !tracker.Empty() {
		t.Error("expected empty after three consecutive high samples")
	}
	if len(pub.Events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(pub.Events))
	}
	if pub.Events[0].Type != logic.EventWaterEmpty {
		t.Errorf("expected WATER_EMPTY, got %s", pub.Events[0].Type)
	}
	if !pub.Events[0].Empty {
		t.Error("WATER_EMPTY event should carry Empty=true")
	}
}

func TestLevelTickEventCarriesClimate(t *testing.T) {
	m, tracker, pub := newLevelMonitor(repeatBool(true, 3), 3)
	tracker.SetReading(sensor.Reading{Temperature: 21.5, Humidity: 38.0})

	for i := 0; i < 3; i++ {
		m.tick()
	}

	if len(pub.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.Events))
	}
	if pub.Events[0].Humidity != 38.0 {
		t.Errorf("event Humidity: got %.1f, want 38.0", pub.Events[0].Humidity)
	}
	if pub.Events[0].Temperature != 21.5 {
		t.Errorf("event Temperature: got %.1f, want 21.5", pub.Events[0].Temperature)
	}
}

func TestLevelTickReadErrorKeepsState(t *testing.T) {
	m, tracker, _ := newLevelMonitor(repeatBool(true, 3), 3)
	for i := 0; i < 3; i++ {
		m.tick()
	}
	if !tracker.Empty() {
		t.Fatal("setup: expected empty")
	}

	m.reader.(*gpio.FakeLevelReader).ReadError = errBus
	m.tick()

	if !tracker.Empty() {
		t.Error("a read error must not change the debounced state")
	}
}

// --- controller ---

func newController(cfg logic.ArbiterConfig, tracker *status.Tracker) (*controller, *actuator.FakePump, *actuator.FakeValve, *mqtt.FakePublisher) {
	pump := actuator.NewFakePump()
	valve := actuator.NewFakeValve()
	pub := mqtt.NewFakePublisher()
	c := &controller{
		arb:     logic.NewArbiter(cfg),
		pump:    pump,
		valve:   valve,
		tracker: tracker,
		pub:     pub,
		now:     fakeClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), time.Second),
	}
	return c, pump, valve, pub
}

func TestControlTickStartsPump(t *testing.T) {
	tracker := newTestTracker()
	tracker.SetReading(sensor.Reading{Temperature: 24.0, Humidity: 30.0})
	c, pump, valve, pub := newController(logic.DefaultArbiterConfig(), tracker)

	c.tick()

	if got := pump.Duty(); got != 217 {
		t.Errorf("pump duty: got %d, want 217", got)
	}
	if valve.Open() {
		t.Error("valve must stay shut while the pump runs")
	}
	if len(pub.Events) != 1 || pub.Events[0].Type != logic.EventPumpOn {
		t.Fatalf("expected a single PUMP_ON event, got %+v", pub.Events)
	}

	a := tracker.Actuators()
	if a.Phase != logic.PhaseRunning {
		t.Errorf("phase: got %s, want RUNNING", a.Phase)
	}
	if a.Countdown != 60 {
		t.Errorf("countdown: got %d, want 60", a.Countdown)
	}
}

func TestControlTickWritesOnChangeOnly(t *testing.T) {
	tracker := newTestTracker()
	tracker.SetReading(sensor.Reading{Humidity: 30.0})
	c, pump, valve, _ := newController(logic.DefaultArbiterConfig(), tracker)

	for i := 0; i < 5; i++ {
		c.tick()
	}

	if len(pump.Writes) != 1 {
		t.Errorf("expected 1 pump write over 5 unchanged ticks, got %d", len(pump.Writes))
	}
	if len(valve.Writes) != 0 {
		t.Errorf("expected 0 valve writes, got %d", len(valve.Writes))
	}
}

func TestControlTickPumpRunRestCycle(t *testing.T) {
	cfg := logic.DefaultArbiterConfig()
	cfg.PumpRunTicks = 2
	cfg.PumpRestTicks = 2
	tracker := newTestTracker()
	tracker.SetReading(sensor.Reading{Humidity: 30.0})
	c, pump, _, pub := newController(cfg, tracker)

	for i := 0; i < 5; i++ {
		c.tick()
	}

	// On for ticks 1-2, off for 3-4, on again at 5.
	wantWrites := []uint8{217, 0, 217}
	if len(pump.Writes) != len(wantWrites) {
		t.Fatalf("pump writes: got %v, want %v", pump.Writes, wantWrites)
	}
	for i, w := range wantWrites {
		if pump.Writes[i] != w {
			t.Errorf("pump write %d: got %d, want %d", i, pump.Writes[i], w)
		}
	}

	wantEvents := []logic.EventType{logic.EventPumpOn, logic.EventPumpOff, logic.EventPumpOn}
	if len(pub.Events) != len(wantEvents) {
		t.Fatalf("events: got %d, want %d", len(pub.Events), len(wantEvents))
	}
	for i, w := range wantEvents {
		if pub.Events[i].Type != w {
			t.Errorf("event %d: got %s, want %s", i, pub.Events[i].Type, w)
		}
	}
}

func TestControlTickTargetReachedOnce(t *testing.T) {
	tracker := newTestTracker()
	tracker.SetReading(sensor.Reading{Humidity: 55.0})
	c, pump, _, pub := newController(logic.DefaultArbiterConfig(), tracker)

	for i := 0; i < 3; i++ {
		c.tick()
	}

	if len(pump.Writes) != 0 {
		t.Errorf("pump already off, expected 0 writes, got %d", len(pump.Writes))
	}
	if len(pub.Events) != 1 || pub.Events[0].Type != logic.EventTargetReached {
		t.Fatalf("expected a single TARGET_REACHED event, got %+v", pub.Events)
	}
	if !tracker.Actuators().TargetReached {
		t.Error("tracker should report target reached")
	}
}

func TestControlTickValveFillThenResume(t *testing.T) {
	cfg := logic.DefaultArbiterConfig()
	cfg.ValveRunTicks = 3
	tracker := newTestTracker()
	tracker.SetReading(sensor.Reading{Humidity: 30.0})
	tracker.SetEmpty(true)
	c, pump, valve, pub := newController(cfg, tracker)

	for i := 0; i < 4; i++ {
		c.tick()
	}

	// Valve opens on tick 1 and shuts during tick 4, 3 ticks open.
	wantValve := []bool{true, false}
	if len(valve.Writes) != len(wantValve) {
		t.Fatalf("valve writes: got %v, want %v", valve.Writes, wantValve)
	}
	if len(pump.Writes) != 0 {
		t.Errorf("pump must stay off during the fill, got writes %v", pump.Writes)
	}

	// Still empty after the fill: standby, latch blocks a second fill.
	c.tick()
	if len(valve.Writes) != 2 {
		t.Errorf("latch should block a second fill, got writes %v", valve.Writes)
	}

	// Water returns: latch clears and the pump takes over.
	tracker.SetEmpty(false)
	c.tick()
	if got := pump.Duty(); got != 217 {
		t.Errorf("pump duty after water returned: got %d, want 217", got)
	}

	wantEvents := []logic.EventType{logic.EventValveOpen, logic.EventValveClosed, logic.EventPumpOn}
	if len(pub.Events) != len(wantEvents) {
		t.Fatalf("events: got %+v, want %v", pub.Events, wantEvents)
	}
	for i, w := range wantEvents {
		if pub.Events[i].Type != w {
			t.Errorf("event %d: got %s, want %s", i, pub.Events[i].Type, w)
		}
	}
}

func TestControlTickEmptyPreemptsPump(t *testing.T) {
	tracker := newTestTracker()
	tracker.SetReading(sensor.Reading{Humidity: 30.0})
	c, pump, valve, _ := newController(logic.DefaultArbiterConfig(), tracker)

	c.tick()
	if pump.Duty() != 217 {
		t.Fatal("setup: pump should be running")
	}

	tracker.SetEmpty(true)
	c.tick()

	if pump.Duty() != 0 {
		t.Error("pump must stop when the reservoir empties")
	}
	if !valve.Open() {
		t.Error("valve should open to refill")
	}
}

func TestControlTickPublishErrorDoesNotStall(t *testing.T) {
	tracker := newTestTracker()
	tracker.SetReading(sensor.Reading{Humidity: 30.0})
	c, pump, _, pub := newController(logic.DefaultArbiterConfig(), tracker)
	pub.PublishError = errBus

	c.tick()
	c.tick()

	if pump.Duty() != 217 {
		t.Error("actuator writes must not depend on the broker")
	}
	if len(pub.Events) != 0 {
		t.Errorf("expected 0 recorded events (publish failed), got %d", len(pub.Events))
	}
}

// --- presenter ---

func TestPresenterTickRendersFrame(t *testing.T) {
	tracker := newTestTracker()
	tracker.SetReading(sensor.Reading{Temperature: 23.4, Humidity: 41.7})
	pub := mqtt.NewFakePublisher()
	pub.Connected = true
	disp := display.NewFake()
	p := &presenter{disp: disp, tracker: tracker, status: pub}

	p.tick()

	frame, ok := disp.Last()
	if !ok {
		t.Fatal("expected a rendered frame")
	}
	if frame[0] != "TEMP: 23.4C" {
		t.Errorf("line 0: got %q", frame[0])
	}
	if !tracker.Snapshot().MQTTConnected {
		t.Error("presenter should refresh the broker-connected flag")
	}
}

// --- runLoop / shutdown plumbing ---

func TestRunLoopRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tick := make(chan time.Time)

	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	wg.Add(1)
	go runLoop(ctx, &wg, tick, func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 0; i < 3; i++ {
		tick <- time.Time{}
	}
	cancel()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if count != 3 {
		t.Errorf("expected fn to run 3 times, got %d", count)
	}
}

func TestPublishSystemStartup(t *testing.T) {
	tracker := newTestTracker()
	pub := mqtt.NewFakePublisher()

	publishSystem(pub, tracker, "STARTUP", "")

	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	se := pub.SystemEvents[0]
	if se.Event != "STARTUP" {
		t.Errorf("expected STARTUP, got %q", se.Event)
	}
	if !se.Retained {
		t.Error("expected Retained=true for STARTUP")
	}
	if len(se.RawPayload) == 0 {
		t.Error("expected a status snapshot payload")
	}
}

func TestPublishSystemNilPublisher(t *testing.T) {
	// Must not panic when running without a broker.
	publishSystem(nil, newTestTracker(), "SHUTDOWN", "SIGTERM")
}

func TestSignalName(t *testing.T) {
	if got := signalName(syscall.SIGINT); got != "SIGINT" {
		t.Errorf("SIGINT: got %q", got)
	}
	if got := signalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("SIGTERM: got %q", got)
	}
	if got := signalName(syscall.SIGHUP); got != "UNKNOWN" {
		t.Errorf("SIGHUP: got %q", got)
	}
}
