package main

import (
	"log"
	"time"

	"github.com/sweeney/mist-controller/internal/actuator"
	"github.com/sweeney/mist-controller/internal/display"
	"github.com/sweeney/mist-controller/internal/gpio"
	"github.com/sweeney/mist-controller/internal/logic"
	"github.com/sweeney/mist-controller/internal/metrics"
	"github.com/sweeney/mist-controller/internal/mqtt"
	"github.com/sweeney/mist-controller/internal/sensor"
	"github.com/sweeney/mist-controller/internal/status"
	"github.com/sweeney/mist-controller/internal/telemetry"
)

// acquirer polls the climate sensor. On a failed or implausible read the
// previous tracker value is retained; the control loop keeps deciding on
// the last good reading rather than a zero.
type acquirer struct {
	reader  sensor.Reader
	offset  float64
	tracker *status.Tracker
	tel     *telemetry.Writer
}

func (a *acquirer) tick() {
	raw, err := a.reader.Read()
	if err != nil {
		log.Printf("sensor read failed: %v", err)
		metrics.SensorErrors.Inc()
		return
	}
	if !sensor.Valid(raw) {
		log.Printf("sensor reading discarded: t=%.1f h=%.1f", raw.Temperature, raw.Humidity)
		metrics.SensorErrors.Inc()
		return
	}

	r := sensor.Calibrate(raw, a.offset)
	a.tracker.SetReading(r)
	metrics.Temperature.Set(r.Temperature)
	metrics.Humidity.Set(r.Humidity)
	a.tel.WriteReading(r, time.Now())
}

// levelMonitor samples the water-level switch and feeds the debounce
// filter. Only debounced transitions reach the tracker and the broker.
type levelMonitor struct {
	reader  gpio.LevelReader
	deb     *logic.Debouncer
	tracker *status.Tracker
	pub     mqtt.Publisher
	tel     *telemetry.Writer
	now     func() time.Time
}

func (m *levelMonitor) tick() {
	sample, err := m.reader.Read()
	if err != nil {
		log.Printf("level read failed: %v", err)
		return
	}

	empty, changed := m.deb.Observe(sample)
	if !changed {
		return
	}

	m.tracker.SetEmpty(empty)
	metrics.SetBool(metrics.WaterEmpty, empty)
	metrics.LevelFlips.Inc()

	typ := logic.EventWaterOK
	if empty {
		typ = logic.EventWaterEmpty
	}
	log.Printf("water level changed: %s", typ)
	m.emit(typ, empty)
}

func (m *levelMonitor) emit(typ logic.EventType, empty bool) {
	r, _ := m.tracker.Reading()
	e := logic.Event{
		Timestamp:   m.now(),
		Type:        typ,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Empty:       empty,
	}
	m.tracker.CountEvent(typ)
	publishEvent(m.pub, e)
	m.tel.WriteEvent(e)
}

// controller owns the arbiter and the actuators. Each tick it snapshots
// the inputs once, arbitrates, writes outputs that changed, and reports
// edges as events.
type controller struct {
	arb     *logic.Arbiter
	pump    actuator.Pump
	valve   actuator.Valve
	tracker *status.Tracker
	pub     mqtt.Publisher
	tel     *telemetry.Writer
	now     func() time.Time

	// last mirrors the hardware, which starts with both outputs off.
	last       logic.Commands
	lastTarget bool
}

func (c *controller) tick() {
	r, _ := c.tracker.Reading()
	in := logic.Input{Humidity: r.Humidity, Empty: c.tracker.Empty()}

	cmd := c.arb.Tick(in)
	metrics.Ticks.Inc()

	if cmd.PumpDuty != c.last.PumpDuty {
		if err := c.pump.SetDuty(cmd.PumpDuty); err != nil {
			log.Printf("set pump duty %d: %v", cmd.PumpDuty, err)
		}
		metrics.PumpDuty.Set(float64(cmd.PumpDuty))
		if cmd.PumpDuty > 0 && c.last.PumpDuty == 0 {
			log.Printf("pump on at duty %d for %d ticks", cmd.PumpDuty, c.arb.Countdown())
			metrics.PumpStarts.Inc()
			c.emit(logic.EventPumpOn, in)
		} else if cmd.PumpDuty == 0 {
			log.Printf("pump off")
			c.emit(logic.EventPumpOff, in)
		}
	}

	if cmd.ValveOpen != c.last.ValveOpen {
		if err := c.valve.Set(cmd.ValveOpen); err != nil {
			log.Printf("set valve %v: %v", cmd.ValveOpen, err)
		}
		metrics.SetBool(metrics.ValveOpen, cmd.ValveOpen)
		if cmd.ValveOpen {
			log.Printf("valve open for %d ticks", c.arb.Countdown())
			metrics.ValveFills.Inc()
			c.emit(logic.EventValveOpen, in)
		} else {
			log.Printf("valve closed")
			c.emit(logic.EventValveClosed, in)
		}
	}

	target := c.arb.LastRule() == "target-reached"
	if target && !c.lastTarget {
		log.Printf("humidity target reached: %.1f%%", in.Humidity)
		c.emit(logic.EventTargetReached, in)
	}

	c.tracker.SetActuators(status.ActuatorState{
		Phase:         c.arb.Phase(),
		PumpDuty:      cmd.PumpDuty,
		ValveOpen:     cmd.ValveOpen,
		ValveHasRun:   c.arb.ValveHasRun(),
		Countdown:     c.arb.Countdown(),
		TargetReached: target,
	})

	c.last = cmd
	c.lastTarget = target
}

func (c *controller) emit(typ logic.EventType, in logic.Input) {
	r, _ := c.tracker.Reading()
	e := logic.Event{
		Timestamp:   c.now(),
		Type:        typ,
		Temperature: r.Temperature,
		Humidity:    in.Humidity,
		Empty:       in.Empty,
		Countdown:   c.arb.Countdown(),
	}
	c.tracker.CountEvent(typ)
	publishEvent(c.pub, e)
	c.tel.WriteEvent(e)
}

// presenter renders the status frame and refreshes the broker-connected
// flag shown on the web page.
type presenter struct {
	disp    display.Display
	tracker *status.Tracker
	status  mqtt.ConnectionStatus
}

func (p *presenter) tick() {
	if p.status != nil {
		p.tracker.SetMQTTConnected(p.status.IsConnected())
	}
	if err := p.disp.Render(display.Frame(p.tracker.Snapshot())); err != nil {
		log.Printf("render frame: %v", err)
	}
}

func publishEvent(pub mqtt.Publisher, e logic.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(e); err != nil {
		log.Printf("failed to publish %s event: %v", e.Type, err)
		metrics.PublishFailures.Inc()
	}
}
