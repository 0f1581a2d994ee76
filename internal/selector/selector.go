// Package selector holds the process-wide flag choosing between the primary
// and alternate candidate providers.
package selector

import (
	"log/slog"
	"sync/atomic"
)

// Selector is safe for concurrent use. Requests read the flag once at
// dispatch; toggles affect only requests that read it afterwards.
type Selector struct {
	alternate  atomic.Bool
	names      [2]string
	adminToken string
	logger     *slog.Logger
}

// State is the selector's reported value. UseGemini repeats UseAlternate
// under the key existing clients of /changeModel and /isGemini read.
type State struct {
	UseGemini    bool   `json:"USE_GEMINI"`
	UseAlternate bool   `json:"use_alternate"`
	Provider     string `json:"provider"`
}

// New creates a Selector. primary and alternate name the providers for
// reporting. An empty adminToken leaves toggling unauthenticated.
func New(initial bool, primary, alternate, adminToken string, logger *slog.Logger) *Selector {
	s := &Selector{
		names:      [2]string{primary, alternate},
		adminToken: adminToken,
		logger:     logger.With("system", "selector"),
	}
	s.alternate.Store(initial)
	return s
}

// Alternate reports whether the alternate provider is selected.
func (s *Selector) Alternate() bool {
	return s.alternate.Load()
}

// Toggle flips the flag and returns the new state.
func (s *Selector) Toggle() State {
	for {
		old := s.alternate.Load()
		if s.alternate.CompareAndSwap(old, !old) {
			s.logger.Info("provider toggled", "use_alternate", !old, "provider", s.name(!old))
			return s.state(!old)
		}
	}
}

// Current returns the current state.
func (s *Selector) Current() State {
	return s.state(s.alternate.Load())
}

// Handler returns the HTTP handler for the selector endpoints.
func (s *Selector) Handler() *Handler {
	return NewHandler(s, s.adminToken, s.logger)
}

func (s *Selector) state(v bool) State {
	return State{UseGemini: v, UseAlternate: v, Provider: s.name(v)}
}

func (s *Selector) name(v bool) string {
	if v {
		return s.names[1]
	}
	return s.names[0]
}
