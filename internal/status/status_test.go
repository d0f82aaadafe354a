package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/mist-controller/internal/logic"
	"github.com/sweeney/mist-controller/internal/sensor"
)

func testConfig() Config {
	return Config{
		TickMs:        1000,
		SenseMs:       2000,
		DebounceCount: 10,
		Preset:        50.0,
		PumpDuty:      217,
		Broker:        "tcp://localhost:1883",
		HTTPAddr:      ":8080",
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.Preset != 50.0 {
		t.Errorf("Config.Preset: got %v, want 50.0", snap.Config.Preset)
	}
	if snap.HaveReading {
		t.Error("expected HaveReading=false initially")
	}
	if snap.Empty {
		t.Error("expected Empty=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestGroupUpdates(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	tr.SetReading(sensor.Reading{Temperature: 22.5, Humidity: 41.0})
	tr.SetEmpty(true)
	tr.SetActuators(ActuatorState{
		Phase:     logic.PhaseRunning,
		PumpDuty:  217,
		Countdown: 42,
	})
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if snap.Reading.Temperature != 22.5 || snap.Reading.Humidity != 41.0 {
		t.Errorf("reading: got %+v", snap.Reading)
	}
	if !snap.HaveReading {
		t.Error("expected HaveReading=true")
	}
	if !snap.Empty {
		t.Error("expected Empty=true")
	}
	if snap.Actuators.Phase != logic.PhaseRunning {
		t.Errorf("phase: got %v", snap.Actuators.Phase)
	}
	if !snap.Actuators.PumpOn() {
		t.Error("expected PumpOn=true")
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
}

func TestCountEvent(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.CountEvent(logic.EventPumpOn)
	tr.CountEvent(logic.EventPumpOn)
	tr.CountEvent(logic.EventValveOpen)
	tr.CountEvent(logic.EventWaterEmpty)
	tr.CountEvent(logic.EventWaterOK)

	c := tr.Snapshot().Counts
	if c.PumpOn != 2 {
		t.Errorf("PumpOn: got %d, want 2", c.PumpOn)
	}
	if c.ValveOpen != 1 {
		t.Errorf("ValveOpen: got %d, want 1", c.ValveOpen)
	}
	if c.WaterEmpty != 1 || c.WaterOK != 1 {
		t.Errorf("water counts: %+v", c)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				tr.SetReading(sensor.Reading{Humidity: float64(j)})
				tr.SetEmpty(j%2 == 0)
				tr.SetActuators(ActuatorState{Countdown: j})
				tr.CountEvent(logic.EventPumpOn)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = tr.Snapshot()
			}
		}()
	}
	wg.Wait()

	if got := tr.Snapshot().Counts.PumpOn; got != 800 {
		t.Errorf("PumpOn count: got %d, want 800", got)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{"target", Snapshot{Actuators: ActuatorState{TargetReached: true}}, "TARGET REACHED"},
		{"valve", Snapshot{Actuators: ActuatorState{ValveOpen: true, Countdown: 175}}, "VALVE: ON 175s"},
		{"pump", Snapshot{Actuators: ActuatorState{PumpDuty: 217, Countdown: 30}}, "PUMP: ON 30s"},
		{"wait", Snapshot{Actuators: ActuatorState{Phase: logic.PhaseWaiting, Countdown: 12}}, "WAIT: 12s"},
		{"standby", Snapshot{Empty: true}, "STANDBY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.snap); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	tr := NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), testConfig())
	tr.SetReading(sensor.Reading{Temperature: 23.1, Humidity: 44.2})
	tr.SetActuators(ActuatorState{Phase: logic.PhaseRunning, PumpDuty: 217, Countdown: 55})

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sj.Status.Temperature != 23.1 {
		t.Errorf("temperature: got %v", sj.Status.Temperature)
	}
	if sj.Status.Actuator != "PUMP: ON 55s" {
		t.Errorf("actuator label: got %q", sj.Status.Actuator)
	}
	if sj.Status.Phase != "RUNNING" {
		t.Errorf("phase: got %q", sj.Status.Phase)
	}
	if sj.Status.Event != "" {
		t.Errorf("web JSON must not carry an event field, got %q", sj.Status.Event)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	var sj StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &sj); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q", sj.Status.Event)
	}
	if sj.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q", sj.Status.Reason)
	}
}
