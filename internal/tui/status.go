package tui

import (
	"fmt"
	"sync"

	"github.com/cybershield/intel/internal/dashboard"
)

// StatusLine keeps the most recent toast for the bottom line of the screen.
// It is safe to notify from any goroutine.
type StatusLine struct {
	mu      sync.Mutex
	last    dashboard.Toast
	set     bool
	changed chan struct{}
}

func NewStatusLine() *StatusLine {
	return &StatusLine{changed: make(chan struct{}, 1)}
}

func (s *StatusLine) Notify(t dashboard.Toast) {
	s.mu.Lock()
	s.last = t
	s.set = true
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Last returns the latest toast, if any has been shown.
func (s *StatusLine) Last() (dashboard.Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.set
}

// Changed fires after a toast arrives; bursts collapse into one signal.
func (s *StatusLine) Changed() <-chan struct{} { return s.changed }

// Text is the styled status line, empty before the first toast.
func (s *StatusLine) Text() string {
	t, ok := s.Last()
	if !ok {
		return ""
	}
	return ToastLine(t)
}

// ToastLine renders a toast in termui's styled-text syntax.
func ToastLine(t dashboard.Toast) string {
	color := "green"
	if t.Variant == dashboard.ToastDestructive {
		color = "red"
	}
	return fmt.Sprintf("[%s: %s](fg:%s)", t.Title, t.Description, color)
}
