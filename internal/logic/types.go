// Package logic contains pure control logic for the mist controller: the
// water-level debounce filter and the actuator arbitration state machine.
// This package has NO external dependencies (no GPIO, I2C, MQTT, OS, or
// time.Sleep). Loops drive it by calling Tick/Observe once per period.
package logic

import "time"

// Phase represents the pump's position within its run/rest cycle. It is
// independent of the valve, which has its own open flag and latch.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseWaiting
)

// String returns the phase name for logs and status output.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseRunning:
		return "RUNNING"
	case PhaseWaiting:
		return "WAITING"
	default:
		return "UNKNOWN"
	}
}

// Input is the snapshot the arbiter decides on. It is taken once at the
// start of each tick so a mid-tick update cannot tear a decision.
type Input struct {
	// Humidity is the calibrated relative humidity in percent.
	Humidity float64
	// Empty is the debounced reservoir-empty state.
	Empty bool
}

// Commands is the actuator output the arbiter wants after a tick.
// Callers write each value to hardware only when it changed.
type Commands struct {
	// PumpDuty is the pump PWM duty, 0-255. Zero means off.
	PumpDuty uint8
	// ValveOpen is the refill valve digital line.
	ValveOpen bool
}

// EventType identifies an externally-visible transition.
type EventType string

const (
	EventPumpOn        EventType = "PUMP_ON"
	EventPumpOff       EventType = "PUMP_OFF"
	EventValveOpen     EventType = "VALVE_OPEN"
	EventValveClosed   EventType = "VALVE_CLOSED"
	EventWaterEmpty    EventType = "WATER_EMPTY"
	EventWaterOK       EventType = "WATER_OK"
	EventTargetReached EventType = "TARGET_REACHED"
)

// Event represents a transition to be published.
type Event struct {
	Timestamp   time.Time
	Type        EventType
	Temperature float64
	Humidity    float64
	Empty       bool
	Countdown   int
}

// EventCounts tracks the number of each transition since startup.
type EventCounts struct {
	PumpOn      int
	PumpOff     int
	ValveOpen   int
	ValveClosed int
	WaterEmpty  int
	WaterOK     int
}
