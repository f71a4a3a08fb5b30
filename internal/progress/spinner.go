// Package progress renders terminal feedback while exports run and pages are fetched.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const spinnerTick = 120 * time.Millisecond

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Spinner shows an indeterminate "Exporting <what>" line with the latest job status.
// A disabled spinner accepts every call and prints nothing.
type Spinner struct {
	bar    *progressbar.ProgressBar
	action string

	mu      sync.Mutex
	status  string
	stop    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewSpinner creates a spinner writing to w. Pass enabled=false for blind mode or
// when w is not a terminal.
func NewSpinner(w io.Writer, action string, enabled bool) *Spinner {
	s := &Spinner{action: action, stop: make(chan struct{})}
	if !enabled {
		return s
	}
	if f, ok := w.(*os.File); ok {
		enableANSIOnWindows(f)
	}

	s.bar = progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(action),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	s.wg.Add(1)
	go s.spin()
	return s
}

func (s *Spinner) spin() {
	defer s.wg.Done()
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			_ = s.bar.Add(1)
		}
	}
}

// Describe updates the status shown after the action text.
func (s *Spinner) Describe(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	if s.bar == nil || s.stopped {
		return
	}
	s.bar.Describe(s.label())
}

// Status returns the last status passed to Describe.
func (s *Spinner) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Spinner) label() string {
	if s.status == "" {
		return s.action
	}
	return fmt.Sprintf("%s [%s]", s.action, s.status)
}

// Stop halts the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stop)
	if s.bar == nil {
		return
	}
	s.wg.Wait()
	_ = s.bar.Finish()
}
