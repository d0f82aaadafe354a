package actuator

// FakePump records duty writes for test assertions.
type FakePump struct {
	// Writes contains every duty value written, in order.
	Writes []uint8

	// SetError, if set, will be returned by SetDuty.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePump creates a FakePump.
func NewFakePump() *FakePump {
	return &FakePump{}
}

// SetDuty records the duty value.
func (f *FakePump) SetDuty(duty uint8) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, duty)
	return nil
}

// Duty returns the last written duty, or 0 if none.
func (f *FakePump) Duty() uint8 {
	if len(f.Writes) == 0 {
		return 0
	}
	return f.Writes[len(f.Writes)-1]
}

// Close marks the pump as closed.
func (f *FakePump) Close() error {
	f.Closed = true
	return nil
}

// FakeValve records open/close writes for test assertions.
type FakeValve struct {
	// Writes contains every state written, in order.
	Writes []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeValve creates a FakeValve.
func NewFakeValve() *FakeValve {
	return &FakeValve{}
}

// Set records the valve state.
func (f *FakeValve) Set(open bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, open)
	return nil
}

// Open returns the last written state, or false if none.
func (f *FakeValve) Open() bool {
	if len(f.Writes) == 0 {
		return false
	}
	return f.Writes[len(f.Writes)-1]
}

// Close marks the valve as closed.
func (f *FakeValve) Close() error {
	f.Closed = true
	return nil
}
