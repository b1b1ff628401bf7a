package cleanup

import (
	"fmt"
	"sync"
	"time"

	"github.com/quickpdf/backend/internal/preview"
	"github.com/quickpdf/backend/internal/session"
	"github.com/quickpdf/backend/internal/storage"
)

// Scheduler reclaims session resources: it sweeps aged files on a
// fixed interval, runs deferred per-session purges scheduled after
// tool runs, and honors explicit on-demand purges.
type Scheduler struct {
	layout    *storage.Layout
	registry  *session.Registry
	cache     *preview.Cache
	retention map[storage.Class]time.Duration
	interval  time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewScheduler builds a scheduler with per-class retention windows.
func NewScheduler(layout *storage.Layout, registry *session.Registry, cache *preview.Cache, retention map[storage.Class]time.Duration, interval time.Duration) *Scheduler {
	return &Scheduler{
		layout:    layout,
		registry:  registry,
		cache:     cache,
		retention: retention,
		interval:  interval,
		timers:    make(map[string]*time.Timer),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the periodic sweep goroutine.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stop:
				return
			}
		}
	}()
	fmt.Printf("[Cleanup] Periodic sweep every %v\n", s.interval)
}

// Stop halts the sweep goroutine and cancels pending deferred purges.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
}

// Sweep runs one reclamation pass: aged files per storage class,
// expired preview manifests, and registry records of sessions with
// nothing left on disk.
func (s *Scheduler) Sweep() {
	removed := 0
	for _, class := range storage.Classes() {
		maxAge, ok := s.retention[class]
		if !ok {
			continue
		}
		removed += s.layout.SweepAged(class, maxAge)
	}
	expired := s.cache.SweepExpired()

	dropped := 0
	for _, id := range s.registry.IDs() {
		if s.layout.HasAnyDir(id) {
			continue
		}
		if s.registry.Countdown(id).Active {
			continue
		}
		s.registry.Drop(id)
		dropped++
	}
	if removed > 0 || expired > 0 || dropped > 0 {
		fmt.Printf("[Cleanup] Sweep removed %d files, %d cache entries, %d idle sessions\n",
			removed, expired, dropped)
	}
}

// ScheduleDeferred arms a one-shot purge of the session after delay.
// Scheduling again for the same session replaces the pending timer.
func (s *Scheduler) ScheduleDeferred(sessionID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
	}
	s.timers[sessionID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, sessionID)
		s.mu.Unlock()
		fmt.Printf("[Cleanup %.8s] Deferred purge firing\n", sessionID)
		s.purge(sessionID)
	})
	fmt.Printf("[Cleanup %.8s] Purge scheduled in %v\n", sessionID, delay)
}

// CancelDeferred drops a pending purge, if any.
func (s *Scheduler) CancelDeferred(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[sessionID]; ok {
		t.Stop()
		delete(s.timers, sessionID)
	}
}

// RunOnDemand purges a session immediately and cancels any deferred
// purge still pending for it.
func (s *Scheduler) RunOnDemand(sessionID string) {
	s.CancelDeferred(sessionID)
	s.purge(sessionID)
}

func (s *Scheduler) purge(sessionID string) {
	s.layout.RemoveSession(sessionID)
	s.registry.Drop(sessionID)
}

// StartupPurge removes files stranded directly under the class roots
// by older layouts or a crashed process. Session directories are left
// to the periodic sweep.
func (s *Scheduler) StartupPurge() {
	removed := 0
	for _, class := range storage.Classes() {
		removed += storage.PurgeFiles(s.layout.ClassRoot(class))
	}
	if removed > 0 {
		fmt.Printf("[Cleanup] Startup purge removed %d stranded files\n", removed)
	}
}
