// Command mist-controller reads a DHT20 climate sensor and a water-level
// switch, arbitrates the misting pump and the reservoir refill valve, and
// publishes state over MQTT, HTTP, and optionally InfluxDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
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
	"github.com/sweeney/mist-controller/internal/web"
)

type config struct {
	tick           time.Duration
	sense          time.Duration
	debounceCount  int
	preset         float64
	humidityOffset float64
	pumpDuty       uint
	pumpRun        int
	pumpRest       int
	valveRun       int
	i2cDev         string
	pinLevel       int
	pinPump        int
	pinValve       int
	broker         string
	httpAddr       string
	influx         telemetry.Config
	printState     bool
}

func main() {
	var cfg config
	flag.DurationVar(&cfg.tick, "tick", time.Second, "Control/level/display tick period")
	flag.DurationVar(&cfg.sense, "sense", 2*time.Second, "Climate acquisition period (DHT20 needs >1s between reads)")
	flag.IntVar(&cfg.debounceCount, "debounce", logic.DefaultDebounceCount, "Consecutive samples to change the level state")
	flag.Float64Var(&cfg.preset, "preset", logic.DefaultPreset, "Humidity target in percent")
	flag.Float64Var(&cfg.humidityOffset, "humidity-offset", sensor.DefaultHumidityOffset, "Additive humidity calibration")
	flag.UintVar(&cfg.pumpDuty, "pump-duty", logic.DefaultPumpDuty, "Pump PWM duty while running (0-255)")
	flag.IntVar(&cfg.pumpRun, "pump-run", logic.DefaultPumpRunTicks, "Pump run duration in ticks")
	flag.IntVar(&cfg.pumpRest, "pump-rest", logic.DefaultPumpRestTicks, "Pump rest duration in ticks")
	flag.IntVar(&cfg.valveRun, "valve-run", logic.DefaultValveRunTicks, "Valve fill duration in ticks")
	flag.StringVar(&cfg.i2cDev, "i2c", "/dev/i2c-1", "I2C bus device for the DHT20")
	flag.IntVar(&cfg.pinLevel, "pin-level", gpio.DefaultPinLevel, "BCM pin for the water-level switch")
	flag.IntVar(&cfg.pinPump, "pin-pump", actuator.DefaultPinPump, "BCM pin for the pump PWM output")
	flag.IntVar(&cfg.pinValve, "pin-valve", actuator.DefaultPinValve, "BCM pin for the valve output")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address (empty to disable)")
	flag.StringVar(&cfg.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.influx.URL, "influx-url", "", "InfluxDB URL (empty to disable telemetry)")
	flag.StringVar(&cfg.influx.Token, "influx-token", "", "InfluxDB API token")
	flag.StringVar(&cfg.influx.Org, "influx-org", "garden", "InfluxDB organization")
	flag.StringVar(&cfg.influx.Bucket, "influx-bucket", "mist", "InfluxDB bucket")
	flag.BoolVar(&cfg.printState, "print-state", false, "Read the sensors once, print, and exit")
	flag.Parse()

	if cfg.pumpDuty > 255 {
		log.Fatalf("fatal: -pump-duty %d out of range (0-255)", cfg.pumpDuty)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	// Device init failures are fatal: a controller that cannot see its
	// sensors must not enter the periodic loops.
	sensorReader, err := sensor.NewRealReader(cfg.i2cDev, sensor.DefaultI2CAddr)
	if err != nil {
		return fmt.Errorf("init dht20: %w", err)
	}
	defer sensorReader.Close()

	levelReader, err := gpio.NewRealReader(cfg.pinLevel)
	if err != nil {
		return fmt.Errorf("init level switch: %w", err)
	}
	defer levelReader.Close()

	if cfg.printState {
		return printState(sensorReader, levelReader, cfg.humidityOffset)
	}

	pump, err := actuator.NewRealPump(cfg.pinPump)
	if err != nil {
		return fmt.Errorf("init pump: %w", err)
	}
	defer pump.Close()

	valve, err := actuator.NewRealValve(cfg.pinValve)
	if err != nil {
		return fmt.Errorf("init valve: %w", err)
	}
	defer valve.Close()

	var pub mqtt.Publisher
	var pubStatus mqtt.ConnectionStatus
	if cfg.broker != "" {
		rp, err := mqtt.NewRealPublisher(cfg.broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer rp.Close()
		pub, pubStatus = rp, rp
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:         cfg.tick.Milliseconds(),
		SenseMs:        cfg.sense.Milliseconds(),
		DebounceCount:  cfg.debounceCount,
		Preset:         cfg.preset,
		HumidityOffset: cfg.humidityOffset,
		PumpDuty:       uint8(cfg.pumpDuty),
		PumpRunTicks:   cfg.pumpRun,
		PumpRestTicks:  cfg.pumpRest,
		ValveRunTicks:  cfg.valveRun,
		Broker:         cfg.broker,
		HTTPAddr:       cfg.httpAddr,
		InfluxURL:      cfg.influx.URL,
	})

	tel := telemetry.NewWriter(cfg.influx)
	defer tel.Close()

	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	publishSystem(pub, tracker, "STARTUP", "")
	log.Printf("started: tick=%v sense=%v preset=%.1f broker=%s", cfg.tick, cfg.sense, cfg.preset, cfg.broker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	arb := logic.NewArbiter(logic.ArbiterConfig{
		Preset:        cfg.preset,
		PumpDuty:      uint8(cfg.pumpDuty),
		PumpRunTicks:  cfg.pumpRun,
		PumpRestTicks: cfg.pumpRest,
		ValveRunTicks: cfg.valveRun,
	})

	acq := &acquirer{reader: sensorReader, offset: cfg.humidityOffset, tracker: tracker, tel: tel}
	lvl := &levelMonitor{reader: levelReader, deb: logic.NewDebouncer(cfg.debounceCount), tracker: tracker, pub: pub, tel: tel, now: time.Now}
	ctl := &controller{arb: arb, pump: pump, valve: valve, tracker: tracker, pub: pub, tel: tel, now: time.Now}
	disp := &presenter{disp: display.NewConsole(os.Stdout), tracker: tracker, status: pubStatus}

	senseTicker := time.NewTicker(cfg.sense)
	defer senseTicker.Stop()
	levelTicker := time.NewTicker(cfg.tick)
	defer levelTicker.Stop()
	controlTicker := time.NewTicker(cfg.tick)
	defer controlTicker.Stop()
	displayTicker := time.NewTicker(cfg.tick)
	defer displayTicker.Stop()

	var wg sync.WaitGroup
	wg.Add(4)
	go runLoop(ctx, &wg, senseTicker.C, acq.tick)
	go runLoop(ctx, &wg, levelTicker.C, lvl.tick)
	go runLoop(ctx, &wg, controlTicker.C, ctl.tick)
	go runLoop(ctx, &wg, displayTicker.C, disp.tick)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	log.Printf("received %v, shutting down", s)

	cancel()
	wg.Wait()

	// Make sure the hardware is quiescent before the deferred closes run.
	if err := pump.SetDuty(0); err != nil {
		log.Printf("stop pump: %v", err)
	}
	if err := valve.Set(false); err != nil {
		log.Printf("shut valve: %v", err)
	}

	publishSystem(pub, tracker, "SHUTDOWN", signalName(s))
	return nil
}

// runLoop invokes fn on every tick until the context is cancelled. If a
// tick's work overruns the period the next tick is simply delayed; there
// is no re-entrant execution.
func runLoop(ctx context.Context, wg *sync.WaitGroup, tick <-chan time.Time, fn func()) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			fn()
		}
	}
}

func printState(rd sensor.Reader, lvl gpio.LevelReader, offset float64) error {
	raw, err := rd.Read()
	if err != nil {
		return fmt.Errorf("read dht20: %w", err)
	}
	r := sensor.Calibrate(raw, offset)

	empty, err := lvl.Read()
	if err != nil {
		return fmt.Errorf("read level switch: %w", err)
	}

	water := "OK"
	if empty {
		water = "EMPTY"
	}
	fmt.Printf("TEMP: %.1fC, HUMI: %.1f%%, WATER: %s (raw line)\n", r.Temperature, r.Humidity, water)
	return nil
}

func publishSystem(pub mqtt.Publisher, tracker *status.Tracker, event, reason string) {
	if pub == nil {
		return
	}
	e := mqtt.SystemEvent{
		Timestamp:  time.Now(),
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), event, reason),
	}
	if err := pub.PublishSystem(e); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
		metrics.PublishFailures.Inc()
	} else {
		log.Printf("published %s event", event)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
