// Package supervisor owns the lifecycle of service processes across rebuilds.
package supervisor

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.trai.ch/ward/internal/core/domain"
	"go.trai.ch/ward/internal/core/ports"
)

// DefaultGrace is how long a service process group gets between the
// termination signal and the forceful kill.
const DefaultGrace = 5 * time.Second

// Supervisor holds at most one live service handle per target.
//
// All methods are called from the scheduler driver; the supervisor itself
// does not synchronize access to its handle map.
type Supervisor struct {
	logger  ports.Logger
	grace   time.Duration
	entries map[domain.InternedString]*entry
}

type entry struct {
	handle  ports.ServiceHandle
	stopped atomic.Bool
}

// New creates a Supervisor with the given termination grace period.
func New(logger ports.Logger, grace time.Duration) *Supervisor {
	return &Supervisor{
		logger:  logger,
		grace:   grace,
		entries: make(map[domain.InternedString]*entry),
	}
}

// Replace terminates the target's previous service, if any, then calls
// spawn and installs the new handle. A spawn error leaves the target
// without a service.
func (s *Supervisor) Replace(name domain.InternedString, spawn func() (ports.ServiceHandle, error)) error {
	s.Stop(name)

	handle, err := spawn()
	if err != nil {
		return err
	}

	e := &entry{handle: handle}
	s.entries[name] = e

	// A service exiting on its own is logged and not restarted; the next
	// invalidation restarts it.
	go func() {
		<-handle.Done()
		if !e.stopped.Load() {
			s.logger.Warn(fmt.Sprintf("%s: service exited", name.String()))
		}
	}()

	return nil
}

// Stop terminates and forgets the target's service, if one is live.
func (s *Supervisor) Stop(name domain.InternedString) {
	e, ok := s.entries[name]
	if !ok {
		return
	}
	delete(s.entries, name)

	e.stopped.Store(true)
	if err := e.handle.Stop(s.grace); err != nil {
		s.logger.Error(err)
	}
}

// Live reports whether the target currently has a supervised service.
func (s *Supervisor) Live(name domain.InternedString) bool {
	_, ok := s.entries[name]
	return ok
}

// ShutdownAll terminates every live service in the given order, dependents
// before their dependencies. Targets without a live service are skipped, so
// the call is idempotent.
func (s *Supervisor) ShutdownAll(order []domain.InternedString) {
	for _, name := range order {
		s.Stop(name)
	}
	// Anything not covered by the order still gets terminated.
	for name := range s.entries {
		s.Stop(name)
	}
}
