// CPU usage collector: computes overall utilization from the delta of two
// CPU time snapshots taken one cadence apart.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/Guliveer/vitalis/deck/internal/models"
)

var (
	// ErrNoCPUBaseline is returned when usage is requested before a first
	// snapshot exists.
	ErrNoCPUBaseline = errors.New("no cpu baseline snapshot")

	// ErrNoCPUDelta is returned when the counters did not advance between
	// snapshots.
	ErrNoCPUDelta = errors.New("cpu counters did not advance")
)

// cpuCounters is the previous-snapshot state needed for a usage delta.
type cpuCounters struct {
	busy  float64
	total float64
}

func countersFrom(t cpu.TimesStat) cpuCounters {
	total := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
	return cpuCounters{
		busy:  total - t.Idle - t.Iowait,
		total: total,
	}
}

// CPUCollector collects overall CPU usage. It is not safe for concurrent
// use; the broadcast loop owns it.
type CPUCollector struct {
	stats HostStats
	last  *cpuCounters
}

// NewCPUCollector creates a new CPU collector.
func NewCPUCollector(stats HostStats) *CPUCollector {
	return &CPUCollector{stats: stats}
}

// Kind returns models.KindCPU.
func (c *CPUCollector) Kind() models.MetricKind { return models.KindCPU }

// Refresh takes the baseline snapshot that the next Collect measures from.
// On failure the baseline is dropped so Collect skips rather than reporting
// over a stale window.
func (c *CPUCollector) Refresh(ctx context.Context) error {
	t, err := c.stats.CPUTimes(ctx)
	if err != nil {
		c.last = nil
		return fmt.Errorf("refresh cpu times: %w", err)
	}
	counters := countersFrom(t)
	c.last = &counters
	return nil
}

// Usage takes a second snapshot and returns the busy percentage since the
// previous one. The new snapshot becomes the baseline.
func (c *CPUCollector) Usage(ctx context.Context) (float64, error) {
	t, err := c.stats.CPUTimes(ctx)
	if err != nil {
		return 0, fmt.Errorf("read cpu times: %w", err)
	}
	now := countersFrom(t)
	prev := c.last
	c.last = &now

	if prev == nil {
		return 0, ErrNoCPUBaseline
	}
	return usageBetween(*prev, now)
}

// Collect returns the usage since the last snapshot as a sample.
func (c *CPUCollector) Collect(ctx context.Context) (models.Sample, error) {
	usage, err := c.Usage(ctx)
	if err != nil {
		return models.Sample{}, err
	}
	return models.CPUSample(usage), nil
}

func usageBetween(prev, now cpuCounters) (float64, error) {
	totalDelta := now.total - prev.total
	if totalDelta <= 0 {
		return 0, ErrNoCPUDelta
	}
	busyDelta := now.busy - prev.busy
	if busyDelta <= 0 {
		return 0, nil
	}
	usage := busyDelta / totalDelta * 100
	if usage > 100 {
		usage = 100
	}
	return usage, nil
}
