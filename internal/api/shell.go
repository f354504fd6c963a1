package api

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/insightdelivered/expense-insight/internal/models"
	"github.com/insightdelivered/expense-insight/internal/upload"
)

// Shell is one browser's application: the current state and the upload form.
type Shell struct {
	mu       sync.Mutex
	state    models.State
	form     *upload.Form
	lastSeen time.Time
}

// NewShell starts in the NoResult state with an empty form.
func NewShell(previews upload.PreviewStore) *Shell {
	return &Shell{
		state: models.NoResult(),
		form:  upload.NewForm(previews),
	}
}

// State returns the current state.
func (s *Shell) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Form returns the shell's upload form.
func (s *Shell) Form() *upload.Form { return s.form }

// Complete stores a result; the dashboard is shown next.
func (s *Shell) Complete(r models.AnalysisResult) {
	s.mu.Lock()
	s.state = models.HasResult(r)
	s.mu.Unlock()
}

// Reset discards the result; the upload form is shown next.
func (s *Shell) Reset() {
	s.mu.Lock()
	s.state = models.NoResult()
	s.mu.Unlock()
}

// Close releases everything the shell holds.
func (s *Shell) Close() {
	s.form.Close()
	s.Reset()
}

func (s *Shell) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Shell) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Sessions maps session ids to shells and closes shells left idle.
type Sessions struct {
	mu       sync.Mutex
	shells   map[string]*Shell
	previews upload.PreviewStore
	idle     time.Duration
	now      func() time.Time
}

// NewSessions creates a registry whose shells expire after idle.
func NewSessions(previews upload.PreviewStore, idle time.Duration) *Sessions {
	return &Sessions{
		shells:   make(map[string]*Shell),
		previews: previews,
		idle:     idle,
		now:      time.Now,
	}
}

// Get returns the shell for id, creating it on first use.
func (s *Sessions) Get(id string) *Shell {
	s.mu.Lock()
	sh, ok := s.shells[id]
	if !ok {
		sh = NewShell(s.previews)
		s.shells[id] = sh
	}
	s.mu.Unlock()

	sh.touch(s.now())
	return sh
}

// Len is the number of live shells.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shells)
}

// Sweep closes and forgets shells idle for longer than the timeout and
// returns how many were removed.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	var expired []*Shell
	for id, sh := range s.shells {
		if sh.idleSince().Before(cutoff) {
			expired = append(expired, sh)
			delete(s.shells, id)
		}
	}
	s.mu.Unlock()

	for _, sh := range expired {
		sh.Close()
	}
	return len(expired)
}

// CloseAll closes every shell.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	shells := s.shells
	s.shells = make(map[string]*Shell)
	s.mu.Unlock()

	for _, sh := range shells {
		sh.Close()
	}
}

// Run sweeps every interval until ctx is done, then closes all shells.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.CloseAll()
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debugf("swept %d idle sessions", n)
			}
		}
	}
}
