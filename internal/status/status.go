// Package status holds the daemon's shared mutable state. Each
// logically-related group (climate reading, water level, actuator state,
// daemon meta) sits behind its own lock, so the control loop can snapshot
// the inputs it needs at the start of a tick without contending with the
// web server or the display loop. No caller holds a lock across a sleep.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/mist-controller/internal/logic"
	"github.com/sweeney/mist-controller/internal/sensor"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs         int64
	SenseMs        int64
	DebounceCount  int
	Preset         float64
	HumidityOffset float64
	PumpDuty       uint8
	PumpRunTicks   int
	PumpRestTicks  int
	ValveRunTicks  int
	Broker         string
	HTTPAddr       string
	InfluxURL      string
}

// ActuatorState is the externally-visible slice of the arbiter's state,
// published by the control loop after every tick.
type ActuatorState struct {
	Phase         logic.Phase
	PumpDuty      uint8
	ValveOpen     bool
	ValveHasRun   bool
	Countdown     int
	TargetReached bool
}

// PumpOn reports whether the pump is being driven.
func (a ActuatorState) PumpOn() bool { return a.PumpDuty > 0 }

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the locks are released.
type Snapshot struct {
	Reading       sensor.Reading
	HaveReading   bool
	Empty         bool
	Actuators     ActuatorState
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds the shared state groups.
type Tracker struct {
	startTime time.Time
	config    Config

	climateMu   sync.RWMutex
	reading     sensor.Reading
	haveReading bool

	levelMu sync.RWMutex
	empty   bool

	actMu sync.RWMutex
	act   ActuatorState

	metaMu        sync.RWMutex
	counts        logic.EventCounts
	mqttConnected bool
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{startTime: startTime, config: cfg}
}

// SetReading publishes a calibrated reading. Called from the acquisition loop.
func (t *Tracker) SetReading(r sensor.Reading) {
	t.climateMu.Lock()
	t.reading = r
	t.haveReading = true
	t.climateMu.Unlock()
}

// Reading returns the latest reading and whether one has been published yet.
func (t *Tracker) Reading() (sensor.Reading, bool) {
	t.climateMu.RLock()
	defer t.climateMu.RUnlock()
	return t.reading, t.haveReading
}

// SetEmpty publishes the debounced reservoir state. Called from the level loop.
func (t *Tracker) SetEmpty(empty bool) {
	t.levelMu.Lock()
	t.empty = empty
	t.levelMu.Unlock()
}

// Empty returns the debounced reservoir state.
func (t *Tracker) Empty() bool {
	t.levelMu.RLock()
	defer t.levelMu.RUnlock()
	return t.empty
}

// SetActuators publishes the arbiter's state. The control loop is the
// single writer of this group.
func (t *Tracker) SetActuators(a ActuatorState) {
	t.actMu.Lock()
	t.act = a
	t.actMu.Unlock()
}

// Actuators returns the latest actuator state.
func (t *Tracker) Actuators() ActuatorState {
	t.actMu.RLock()
	defer t.actMu.RUnlock()
	return t.act
}

// CountEvent increments the counter for a transition type.
func (t *Tracker) CountEvent(typ logic.EventType) {
	t.metaMu.Lock()
	switch typ {
	case logic.EventPumpOn:
		t.counts.PumpOn++
	case logic.EventPumpOff:
		t.counts.PumpOff++
	case logic.EventValveOpen:
		t.counts.ValveOpen++
	case logic.EventValveClosed:
		t.counts.ValveClosed++
	case logic.EventWaterEmpty:
		t.counts.WaterEmpty++
	case logic.EventWaterOK:
		t.counts.WaterOK++
	}
	t.metaMu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.metaMu.Lock()
	t.mqttConnected = connected
	t.metaMu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state. The Now field
// is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		StartTime: t.startTime,
		Config:    t.config,
		Now:       time.Now(),
	}

	t.climateMu.RLock()
	s.Reading = t.reading
	s.HaveReading = t.haveReading
	t.climateMu.RUnlock()

	t.levelMu.RLock()
	s.Empty = t.empty
	t.levelMu.RUnlock()

	t.actMu.RLock()
	s.Actuators = t.act
	t.actMu.RUnlock()

	t.metaMu.RLock()
	s.Counts = t.counts
	s.MQTTConnected = t.mqttConnected
	t.metaMu.RUnlock()

	return s
}
