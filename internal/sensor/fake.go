package sensor

import "errors"

// FakeReader is a test double that returns scripted readings.
type FakeReader struct {
	// Samples contains scripted raw readings. Each call to Read()
	// consumes the next sample; the last one repeats when exhausted.
	Samples []Reading

	// Errs, if non-nil, is consulted per sample: a non-nil entry is
	// returned instead of the reading at the same index.
	Errs []error

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Reading) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample or error.
func (f *FakeReader) Read() (Reading, error) {
	if len(f.Samples) == 0 {
		return Reading{}, errors.New("no samples configured")
	}

	i := f.index
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	if i < len(f.Errs) && f.Errs[i] != nil {
		return Reading{}, f.Errs[i]
	}
	return f.Samples[i], nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the script.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
