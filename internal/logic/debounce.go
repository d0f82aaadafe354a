package logic

// DefaultDebounceCount is the number of consecutive same-polarity samples
// required before the filtered level state changes.
const DefaultDebounceCount = 10

// Debouncer filters a noisy boolean line by requiring threshold consecutive
// same-polarity samples before accepting a state change. A sample of
// opposite polarity resets the other counter to zero. Counters saturate at
// the threshold; the observable behavior is the same as letting them grow.
type Debouncer struct {
	threshold int
	state     bool

	consecutiveHigh int
	consecutiveLow  int
}

// NewDebouncer creates a Debouncer with the given threshold and an initial
// filtered state of false (reservoir not empty).
func NewDebouncer(threshold int) *Debouncer {
	if threshold < 1 {
		threshold = 1
	}
	return &Debouncer{threshold: threshold}
}

// Observe consumes one raw sample (true = line high = reservoir empty) and
// returns the filtered state plus whether it changed on this sample.
// Never blocks; no side effects beyond the internal counters.
func (d *Debouncer) Observe(sample bool) (state bool, changed bool) {
	if sample {
		if d.consecutiveHigh < d.threshold {
			d.consecutiveHigh++
		}
		d.consecutiveLow = 0
		if d.consecutiveHigh >= d.threshold && !d.state {
			d.state = true
			return d.state, true
		}
	} else {
		if d.consecutiveLow < d.threshold {
			d.consecutiveLow++
		}
		d.consecutiveHigh = 0
		if d.consecutiveLow >= d.threshold && d.state {
			d.state = false
			return d.state, true
		}
	}
	return d.state, false
}

// State returns the current filtered state without consuming a sample.
func (d *Debouncer) State() bool {
	return d.state
}
