package display

import "sync"

// Fake records rendered frames for test assertions.
type Fake struct {
	mu sync.Mutex

	// Frames contains every rendered frame, in order.
	Frames []Lines

	// RenderError, if set, will be returned by Render.
	RenderError error
}

// NewFake creates a Fake display.
func NewFake() *Fake {
	return &Fake{}
}

// Render records the frame.
func (f *Fake) Render(frame Lines) error {
	if f.RenderError != nil {
		return f.RenderError
	}
	f.mu.Lock()
	f.Frames = append(f.Frames, frame)
	f.mu.Unlock()
	return nil
}

// Last returns the most recently rendered frame and whether any exists.
func (f *Fake) Last() (Lines, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Frames) == 0 {
		return Lines{}, false
	}
	return f.Frames[len(f.Frames)-1], true
}
