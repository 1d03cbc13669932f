package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/vitalis/deck/internal/models"
)

// fakeStats replays CPU snapshots in order and returns fixed values for the
// rest.
type fakeStats struct {
	times    []cpu.TimesStat
	cpuErr   error
	memUsed  uint64
	memErr   error
	uptime   uint64
	upErr    error
	platform string
	version  string
	platErr  error
}

func (f *fakeStats) CPUTimes(context.Context) (cpu.TimesStat, error) {
	if f.cpuErr != nil {
		return cpu.TimesStat{}, f.cpuErr
	}
	if len(f.times) == 0 {
		return cpu.TimesStat{}, errors.New("no more snapshots")
	}
	t := f.times[0]
	f.times = f.times[1:]
	return t, nil
}

func (f *fakeStats) MemoryUsed(context.Context) (uint64, error) { return f.memUsed, f.memErr }

func (f *fakeStats) Uptime(context.Context) (uint64, error) { return f.uptime, f.upErr }

func (f *fakeStats) Platform(context.Context) (string, string, error) {
	return f.platform, f.version, f.platErr
}

func snapshot(busy, idle float64) cpu.TimesStat {
	return cpu.TimesStat{CPU: "cpu-total", User: busy, Idle: idle}
}

func TestCPUCollector_UsageFromDelta(t *testing.T) {
	stats := &fakeStats{times: []cpu.TimesStat{
		snapshot(100, 900),
		snapshot(137.4, 962.6), // +37.4 busy of +100 total
	}}
	c := NewCPUCollector(stats)

	require.NoError(t, c.Refresh(context.Background()))
	usage, err := c.Usage(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 37.4, usage, 0.0001)
}

func TestCPUCollector_IowaitCountsAsIdle(t *testing.T) {
	stats := &fakeStats{times: []cpu.TimesStat{
		{User: 10, Idle: 80, Iowait: 10},
		{User: 30, Idle: 140, Iowait: 30},
	}}
	c := NewCPUCollector(stats)

	require.NoError(t, c.Refresh(context.Background()))
	usage, err := c.Usage(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 20.0, usage, 0.0001)
}

func TestCPUCollector_NoBaseline(t *testing.T) {
	stats := &fakeStats{times: []cpu.TimesStat{snapshot(1, 1), snapshot(2, 2)}}
	c := NewCPUCollector(stats)

	_, err := c.Usage(context.Background())
	assert.ErrorIs(t, err, ErrNoCPUBaseline)

	// The failed call still leaves a baseline for the next one.
	usage, err := c.Usage(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 50.0, usage, 0.0001)
}

func TestCPUCollector_NoDelta(t *testing.T) {
	stats := &fakeStats{times: []cpu.TimesStat{snapshot(5, 5), snapshot(5, 5)}}
	c := NewCPUCollector(stats)

	require.NoError(t, c.Refresh(context.Background()))
	_, err := c.Usage(context.Background())
	assert.ErrorIs(t, err, ErrNoCPUDelta)
}

func TestCPUCollector_FailedRefreshDropsBaseline(t *testing.T) {
	stats := &fakeStats{times: []cpu.TimesStat{snapshot(10, 10), snapshot(20, 20)}}
	c := NewCPUCollector(stats)
	require.NoError(t, c.Refresh(context.Background()))

	stats.cpuErr = errors.New("boom")
	require.Error(t, c.Refresh(context.Background()))

	stats.cpuErr = nil
	_, err := c.Usage(context.Background())
	assert.ErrorIs(t, err, ErrNoCPUBaseline)
}

func TestUsageBetween_Clamps(t *testing.T) {
	usage, err := usageBetween(cpuCounters{busy: 50, total: 100}, cpuCounters{busy: 40, total: 200})
	require.NoError(t, err)
	assert.Zero(t, usage)

	usage, err = usageBetween(cpuCounters{busy: 0, total: 100}, cpuCounters{busy: 500, total: 200})
	require.NoError(t, err)
	assert.Equal(t, 100.0, usage)
}

func TestSampler_SampleAllOrder(t *testing.T) {
	stats := &fakeStats{
		times:   []cpu.TimesStat{snapshot(0, 0), snapshot(25, 75)},
		memUsed: 2147483648,
		uptime:  90000,
	}
	s := NewSampler(stats, zaptest.NewLogger(t))

	require.NoError(t, s.BeginCPUWindow(context.Background()))
	samples := s.SampleAll(context.Background())

	require.Len(t, samples, 3)
	assert.Equal(t, models.KindCPU, samples[0].Kind)
	assert.InDelta(t, 25.0, samples[0].CPUPercent, 0.0001)
	assert.Equal(t, models.MemorySample(2147483648), samples[1])
	assert.Equal(t, models.UptimeSample(90000), samples[2])
}

func TestSampler_SkipsFailedKinds(t *testing.T) {
	stats := &fakeStats{
		times:  []cpu.TimesStat{snapshot(0, 0), snapshot(10, 10)},
		memErr: errors.New("meminfo unreadable"),
		uptime: 42,
	}
	s := NewSampler(stats, zaptest.NewLogger(t))

	require.NoError(t, s.BeginCPUWindow(context.Background()))
	samples := s.SampleAll(context.Background())

	require.Len(t, samples, 2)
	assert.Equal(t, models.KindCPU, samples[0].Kind)
	assert.Equal(t, models.KindUptime, samples[1].Kind)
}

func TestSampler_ContractMethods(t *testing.T) {
	stats := &fakeStats{
		times:   []cpu.TimesStat{snapshot(0, 0), snapshot(1, 3)},
		memUsed: 1 << 30,
		uptime:  3600,
	}
	s := NewSampler(stats, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, s.BeginCPUWindow(ctx))
	usage, err := s.SampleCPU(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, usage, 0.0001)

	used, err := s.SampleMemoryBytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<30), used)

	up, err := s.SampleUptimeSeconds(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3600), up)
}

func TestSampler_SampleAllWithoutCPUWindow(t *testing.T) {
	stats := &fakeStats{
		times:   []cpu.TimesStat{snapshot(5, 5)},
		memUsed: 1024,
		uptime:  7,
	}
	s := NewSampler(stats, zaptest.NewLogger(t))

	samples := s.SampleAll(context.Background())

	require.Len(t, samples, 2)
	assert.Equal(t, models.KindMemory, samples[0].Kind)
	assert.Equal(t, models.KindUptime, samples[1].Kind)

	_, err := s.SampleCPU(context.Background())
	assert.Error(t, err)
}
