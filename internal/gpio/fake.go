package gpio

import "errors"

// FakeLevelReader is a test double that returns scripted line samples.
type FakeLevelReader struct {
	// Samples contains scripted raw line states. Each call to Read()
	// consumes the next sample; the last one repeats when exhausted.
	Samples []bool

	// ReadError, if set, will be returned by Read().
	ReadError error

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeLevelReader creates a FakeLevelReader with the given samples.
func NewFakeLevelReader(samples []bool) *FakeLevelReader {
	return &FakeLevelReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeLevelReader) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s, nil
}

// Close marks the reader as closed.
func (f *FakeLevelReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the script.
func (f *FakeLevelReader) Reset() {
	f.index = 0
	f.Closed = false
}
