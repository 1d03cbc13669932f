package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/deck/internal/models"
)

// Sampler owns the periodic collectors and the CPU delta state.
// It is used from a single goroutine: the broadcast loop.
type Sampler struct {
	cpu    *CPUCollector
	memory *MemoryCollector
	uptime *UptimeCollector
	logger *zap.Logger
}

// NewSampler creates a sampler over the given host stats.
func NewSampler(stats HostStats, logger *zap.Logger) *Sampler {
	return &Sampler{
		cpu:    NewCPUCollector(stats),
		memory: NewMemoryCollector(stats),
		uptime: NewUptimeCollector(stats),
		logger: logger.Named("sampler"),
	}
}

// BeginCPUWindow takes the first of the two CPU snapshots that bracket a
// cadence interval.
func (s *Sampler) BeginCPUWindow(ctx context.Context) error {
	return s.cpu.Refresh(ctx)
}

// SampleCPU closes the CPU window and returns usage in percent.
func (s *Sampler) SampleCPU(ctx context.Context) (float64, error) {
	sample, err := s.cpu.Collect(ctx)
	return sample.CPUPercent, err
}

// SampleMemoryBytes returns used memory in bytes.
func (s *Sampler) SampleMemoryBytes(ctx context.Context) (uint64, error) {
	sample, err := s.memory.Collect(ctx)
	return sample.MemoryUsed, err
}

// SampleUptimeSeconds returns seconds since boot.
func (s *Sampler) SampleUptimeSeconds(ctx context.Context) (uint64, error) {
	sample, err := s.uptime.Collect(ctx)
	return sample.UptimeSeconds, err
}

// SampleAll samples every periodic kind in broadcast order (CPU, Memory,
// Uptime). A failed kind is logged and left out; the rest still run.
func (s *Sampler) SampleAll(ctx context.Context) []models.Sample {
	samples := make([]models.Sample, 0, 3)

	if usage, err := s.SampleCPU(ctx); err != nil {
		s.skip(models.KindCPU, err)
	} else {
		samples = append(samples, models.CPUSample(usage))
	}

	if used, err := s.SampleMemoryBytes(ctx); err != nil {
		s.skip(models.KindMemory, err)
	} else {
		samples = append(samples, models.MemorySample(used))
	}

	if up, err := s.SampleUptimeSeconds(ctx); err != nil {
		s.skip(models.KindUptime, err)
	} else {
		samples = append(samples, models.UptimeSample(up))
	}

	return samples
}

func (s *Sampler) skip(kind models.MetricKind, err error) {
	s.logger.Warn("Sampling failed, skipping kind this cycle",
		zap.Stringer("kind", kind),
		zap.Error(err))
}
