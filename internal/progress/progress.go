// Package progress draws a stderr spinner while long steps run.
// It stays silent when stderr is not a terminal, with --json, or when
// RPA_NO_PROGRESS=1.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var frames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Spinner shows a spinner for operations whose length is unknown.
type Spinner struct {
	Label   string
	Enabled bool

	out     io.Writer
	mu      sync.Mutex
	done    chan struct{}
	stopped bool
	step    int
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		Label:   label,
		Enabled: Enabled(),
		out:     os.Stderr,
		done:    make(chan struct{}),
	}
}

// SetOutput redirects the spinner, mainly for tests.
func (s *Spinner) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = w
}

// Start begins the animation.
func (s *Spinner) Start() {
	if !s.Enabled {
		return
	}

	s.mu.Lock()
	s.stopped = false
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if !s.stopped {
					fmt.Fprintf(s.out, "\r\033[K%c %s", frames[i%len(frames)], s.Label)
					i++
				}
				s.mu.Unlock()
			}
		}
	}()
}

// Update changes the label while the spinner runs.
func (s *Spinner) Update(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Label = label
}

// Step numbers the label; it fits refresh.Runner.OnStep.
func (s *Spinner) Step(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step++
	s.Label = fmt.Sprintf("[%d] %s", s.step, name)
}

// Stop ends the animation and prints a result line.
func (s *Spinner) Stop(result string) {
	s.finish("✓", result)
}

// Fail ends the animation and prints a failure line.
func (s *Spinner) Fail(result string) {
	s.finish("✗", result)
}

func (s *Spinner) finish(mark, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	select {
	case <-s.done:
	default:
		close(s.done)
	}

	if s.Enabled {
		fmt.Fprintf(s.out, "\r\033[K%s %s\n", mark, result)
	}
}

// Enabled reports whether progress output should be drawn.
func Enabled() bool {
	if os.Getenv("RPA_NO_PROGRESS") == "1" {
		return false
	}
	if os.Getenv("RPA_JSON") == "true" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
