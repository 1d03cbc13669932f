// RAM usage collector: gathers used memory bytes.
package collector

import (
	"context"
	"fmt"

	"github.com/Guliveer/vitalis/deck/internal/models"
)

// MemoryCollector collects used RAM.
type MemoryCollector struct {
	stats HostStats
}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector(stats HostStats) *MemoryCollector {
	return &MemoryCollector{stats: stats}
}

// Kind returns models.KindMemory.
func (c *MemoryCollector) Kind() models.MetricKind { return models.KindMemory }

// Collect gathers used memory in bytes.
func (c *MemoryCollector) Collect(ctx context.Context) (models.Sample, error) {
	used, err := c.stats.MemoryUsed(ctx)
	if err != nil {
		return models.Sample{}, fmt.Errorf("read memory: %w", err)
	}
	return models.MemorySample(used), nil
}
