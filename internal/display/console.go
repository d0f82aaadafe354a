package display

import (
	"fmt"
	"io"
	"sync"
)

// Console writes frames to an io.Writer, one frame per refresh with a
// separator line. It is deliberately dumb: no cursor addressing, so it
// works on a logged serial console as well as a terminal.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Render writes one frame.
func (c *Console) Render(frame Lines) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range frame {
		if _, err := fmt.Fprintln(c.w, line); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
	if _, err := fmt.Fprintln(c.w, "----"); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
