package logic

// Arbitration defaults, flag-overridable in the daemon.
const (
	DefaultPreset        = 50.0 // percent relative humidity
	DefaultPumpDuty      = 217  // 85% of 255
	DefaultPumpRunTicks  = 60
	DefaultPumpRestTicks = 60
	DefaultValveRunTicks = 180
)

// ArbiterConfig holds the tunables of the arbitration state machine.
type ArbiterConfig struct {
	// Preset is the humidity target in percent. At or above it, everything stops.
	Preset float64
	// PumpDuty is the PWM duty (0-255) applied while the pump runs.
	PumpDuty uint8
	// PumpRunTicks and PumpRestTicks define the pump's run/rest cycle.
	PumpRunTicks  int
	PumpRestTicks int
	// ValveRunTicks is how long the refill valve stays open per fill.
	ValveRunTicks int
}

// DefaultArbiterConfig returns the standard tuning.
func DefaultArbiterConfig() ArbiterConfig {
	return ArbiterConfig{
		Preset:        DefaultPreset,
		PumpDuty:      DefaultPumpDuty,
		PumpRunTicks:  DefaultPumpRunTicks,
		PumpRestTicks: DefaultPumpRestTicks,
		ValveRunTicks: DefaultValveRunTicks,
	}
}

// Arbiter is the actuator arbitration state machine. Each Tick it evaluates
// an ordered rule list top-to-bottom and executes only the first rule whose
// condition holds. The valve and the pump are mutually exclusive: every rule
// that touches one forces the other off.
//
// Arbiter is not safe for concurrent use; it is owned by the control loop,
// which is its single writer.
type Arbiter struct {
	cfg ArbiterConfig

	phase       Phase
	pumpDuty    uint8
	valveOpen   bool
	valveHasRun bool

	// Independent countdowns. The original single shared field is safe to
	// split because its two owners are mutually exclusive by construction;
	// Countdown reports whichever one is active.
	pumpCountdown  int
	valveCountdown int

	lastRule string
}

// A rule pairs a priority-ordered condition with its action. Keeping the
// chain as data makes the priority contract testable without timing.
type rule struct {
	name string
	when func(a *Arbiter, in Input) bool
	run  func(a *Arbiter, in Input)
}

var rules = []rule{
	{
		name: "target-reached",
		when: func(a *Arbiter, in Input) bool { return in.Humidity >= a.cfg.Preset },
		run:  (*Arbiter).targetReached,
	},
	{
		name: "valve-running",
		when: func(a *Arbiter, in Input) bool { return a.valveOpen },
		run:  (*Arbiter).valveRunning,
	},
	{
		name: "start-fill",
		when: func(a *Arbiter, in Input) bool { return in.Empty && !a.valveHasRun },
		run:  (*Arbiter).startFill,
	},
	{
		name: "pump-cycle",
		when: func(a *Arbiter, in Input) bool { return true },
		run:  (*Arbiter).pumpCycle,
	},
}

// NewArbiter creates an Arbiter in the quiescent startup state: actuators
// off, phase idle, valve latch clear.
func NewArbiter(cfg ArbiterConfig) *Arbiter {
	return &Arbiter{cfg: cfg}
}

// Tick runs one arbitration step against the given input snapshot and
// returns the actuator commands to apply. It never fails: out-of-range
// sensor values simply fall through to the next applicable rule.
func (a *Arbiter) Tick(in Input) Commands {
	for _, r := range rules {
		if r.when(a, in) {
			r.run(a, in)
			a.lastRule = r.name
			break
		}
	}
	return Commands{PumpDuty: a.pumpDuty, ValveOpen: a.valveOpen}
}

// targetReached stops everything. The valve latch is deliberately left
// alone: reaching the humidity target says nothing about the reservoir.
func (a *Arbiter) targetReached(Input) {
	a.pumpDuty = 0
	a.phase = PhaseIdle
	a.pumpCountdown = 0
	a.valveOpen = false
	a.valveCountdown = 0
}

// valveRunning lets an in-progress fill complete, pre-empting the pump
// unconditionally, even if the reservoir reads non-empty mid-fill.
func (a *Arbiter) valveRunning(Input) {
	a.pumpDuty = 0
	a.phase = PhaseIdle
	a.pumpCountdown = 0

	a.valveCountdown--
	if a.valveCountdown <= 0 {
		a.valveCountdown = 0
		a.valveOpen = false
		a.valveHasRun = true
	}
}

// startFill opens the valve for a full fill cycle. The latch keeps it from
// re-firing until the empty condition has cleared and reoccurred.
func (a *Arbiter) startFill(Input) {
	a.pumpDuty = 0
	a.phase = PhaseIdle
	a.pumpCountdown = 0

	a.valveOpen = true
	a.valveCountdown = a.cfg.ValveRunTicks
}

// pumpCycle is the fallback rule: with the reservoir empty (and the latch
// set) it holds everything off; otherwise it clears the latch and steps the
// pump's run/rest machine.
func (a *Arbiter) pumpCycle(in Input) {
	if in.Empty {
		a.pumpDuty = 0
		a.phase = PhaseIdle
		a.pumpCountdown = 0
		return
	}

	a.valveHasRun = false

	switch a.phase {
	case PhaseIdle:
		a.startPump()
	case PhaseRunning:
		a.pumpCountdown--
		if a.pumpCountdown <= 0 {
			a.pumpDuty = 0
			a.pumpCountdown = a.cfg.PumpRestTicks
			a.phase = PhaseWaiting
		}
	case PhaseWaiting:
		a.pumpCountdown--
		if a.pumpCountdown <= 0 {
			// Rest complete; restart with no gap tick.
			a.startPump()
		}
	}
}

func (a *Arbiter) startPump() {
	a.pumpDuty = a.cfg.PumpDuty
	a.pumpCountdown = a.cfg.PumpRunTicks
	a.phase = PhaseRunning
}

// Phase returns the pump cycle phase.
func (a *Arbiter) Phase() Phase { return a.phase }

// PumpDuty returns the commanded pump duty (0-255).
func (a *Arbiter) PumpDuty() uint8 { return a.pumpDuty }

// ValveOpen reports whether the refill valve is commanded open.
func (a *Arbiter) ValveOpen() bool { return a.valveOpen }

// ValveHasRun reports whether the valve has already completed a fill during
// the current empty cycle.
func (a *Arbiter) ValveHasRun() bool { return a.valveHasRun }

// Countdown returns the ticks remaining for whichever actuator currently
// owns a timer: the valve while it is open, the pump while it is running or
// resting, zero otherwise.
func (a *Arbiter) Countdown() int {
	if a.valveOpen {
		return a.valveCountdown
	}
	if a.phase == PhaseRunning || a.phase == PhaseWaiting {
		return a.pumpCountdown
	}
	return 0
}

// LastRule returns the name of the rule that executed on the most recent
// tick. Used by tests and debug logging.
func (a *Arbiter) LastRule() string { return a.lastRule }
