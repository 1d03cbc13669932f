// Package collector samples host metrics for the broadcast loop.
// OS queries go through HostStats so the sampling rules can be exercised
// without a real host.
package collector

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Guliveer/vitalis/deck/internal/models"
)

// Collector produces one periodic sample kind.
type Collector interface {
	// Kind returns the metric kind this collector samples.
	Kind() models.MetricKind

	// Collect gathers the current value. A non-nil error means no value
	// is available this cycle.
	Collect(ctx context.Context) (models.Sample, error)
}

// HostStats is the set of OS queries the collectors depend on.
type HostStats interface {
	// CPUTimes returns aggregate CPU time counters across all cores.
	CPUTimes(ctx context.Context) (cpu.TimesStat, error)
	// MemoryUsed returns used physical memory in bytes.
	MemoryUsed(ctx context.Context) (uint64, error)
	// Uptime returns seconds since boot.
	Uptime(ctx context.Context) (uint64, error)
	// Platform returns the OS distribution name and version.
	Platform(ctx context.Context) (name, version string, err error)
}

var errNoCPUTimes = errors.New("no aggregate cpu times reported")

// SystemStats implements HostStats with gopsutil.
type SystemStats struct{}

// NewSystemStats creates a gopsutil-backed HostStats.
func NewSystemStats() *SystemStats {
	return &SystemStats{}
}

// CPUTimes returns the combined counters (percpu=false yields one entry).
func (SystemStats) CPUTimes(ctx context.Context) (cpu.TimesStat, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return cpu.TimesStat{}, err
	}
	if len(times) == 0 {
		return cpu.TimesStat{}, errNoCPUTimes
	}
	return times[0], nil
}

// MemoryUsed returns the used field of the virtual memory stat.
func (SystemStats) MemoryUsed(ctx context.Context) (uint64, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return v.Used, nil
}

// Uptime returns seconds since boot.
func (SystemStats) Uptime(ctx context.Context) (uint64, error) {
	return host.UptimeWithContext(ctx)
}

// Platform returns the distribution (e.g. "ubuntu", "darwin") and version.
func (SystemStats) Platform(ctx context.Context) (string, string, error) {
	platform, _, version, err := host.PlatformInformationWithContext(ctx)
	return platform, version, err
}
