// Package scheduler implements the broadcast loop: every cadence it samples
// the host, formats each metric once and pushes the text to every visible
// instance of that metric's action.
//
// Pushes are fire-and-forget. A slow or failing instance never delays other
// pushes or the next cycle.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Guliveer/vitalis/deck/internal/config"
	"github.com/Guliveer/vitalis/deck/internal/format"
	"github.com/Guliveer/vitalis/deck/internal/host"
	"github.com/Guliveer/vitalis/deck/internal/models"
)

// Cadence is the wait between cycles. It is also the CPU measurement window.
const Cadence = time.Second

// Sampler produces the periodic samples.
type Sampler interface {
	// BeginCPUWindow takes the baseline CPU snapshot for the coming cycle.
	BeginCPUWindow(ctx context.Context) error
	// SampleAll returns the samples that could be produced, in broadcast order.
	SampleAll(ctx context.Context) []models.Sample
}

// InstanceDirectory resolves the currently visible instances of an action.
type InstanceDirectory interface {
	VisibleInstances(actionID string) []host.Instance
}

// CycleStats summarizes one broadcast cycle.
type CycleStats struct {
	Samples    int
	Dispatched int
	Skipped    int
}

// Scheduler runs the broadcast loop.
type Scheduler struct {
	sampler  Sampler
	dir      InstanceDirectory
	logger   *zap.Logger
	interval time.Duration

	sem        *semaphore.Weighted
	inflightMu sync.Mutex
	inflight   map[string]struct{}
	pushes     sync.WaitGroup
}

// New creates a Scheduler pushing samples from sampler to instances in dir.
func New(sampler Sampler, dir InstanceDirectory, cfg *config.Config, logger *zap.Logger) *Scheduler {
	maxInFlight := int64(cfg.Push.MaxInFlight)
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Scheduler{
		sampler:  sampler,
		dir:      dir,
		logger:   logger.Named("scheduler"),
		interval: Cadence,
		sem:      semaphore.NewWeighted(maxInFlight),
		inflight: make(map[string]struct{}),
	}
}

// Start runs the loop until ctx is cancelled. It has no other exit.
func (s *Scheduler) Start(ctx context.Context) {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		if err := s.sampler.BeginCPUWindow(ctx); err != nil {
			s.logger.Warn("CPU baseline failed", zap.Error(err))
		}

		timer.Reset(s.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		s.RunCycle(ctx)
	}
}

// RunCycle samples once and dispatches the formatted text to every instance
// visible at this moment. It does not wait for the pushes to complete.
func (s *Scheduler) RunCycle(ctx context.Context) CycleStats {
	var stats CycleStats

	for _, sample := range s.sampler.SampleAll(ctx) {
		text, err := format.Format(sample)
		if err != nil {
			s.logger.Error("Cannot format sample", zap.Stringer("kind", sample.Kind), zap.Error(err))
			continue
		}
		stats.Samples++

		for _, inst := range s.dir.VisibleInstances(sample.Kind.ID()) {
			if s.dispatch(ctx, sample.Kind, inst, text) {
				stats.Dispatched++
			} else {
				stats.Skipped++
			}
		}
	}

	s.logger.Debug("Broadcast cycle",
		zap.Int("samples", stats.Samples),
		zap.Int("dispatched", stats.Dispatched),
		zap.Int("skipped", stats.Skipped))
	return stats
}

// Wait blocks until all dispatched pushes have returned.
func (s *Scheduler) Wait() {
	s.pushes.Wait()
}

// dispatch starts a push in its own goroutine. It returns false when the push
// is skipped because the same instance still has a push in flight. When the
// global in-flight limit is reached the push waits for a slot inside its
// goroutine, so the cycle itself never blocks.
func (s *Scheduler) dispatch(ctx context.Context, kind models.MetricKind, inst host.Instance, text models.DisplayText) bool {
	key := kind.ID() + "/" + inst.Context()

	s.inflightMu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.inflightMu.Unlock()
		s.logger.Debug("Previous push still in flight, skipping",
			zap.Stringer("kind", kind),
			zap.String("context", inst.Context()))
		return false
	}
	s.inflight[key] = struct{}{}
	s.inflightMu.Unlock()

	s.pushes.Add(1)
	go func() {
		defer func() {
			s.inflightMu.Lock()
			delete(s.inflight, key)
			s.inflightMu.Unlock()
			s.pushes.Done()
		}()

		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer s.sem.Release(1)

		// Failures are dropped: the next cycle retries with a fresh lookup.
		if err := inst.SetTitle(ctx, text); err != nil {
			s.logger.Debug("Push failed",
				zap.Stringer("kind", kind),
				zap.String("context", inst.Context()),
				zap.Error(err))
		}
	}()
	return true
}
