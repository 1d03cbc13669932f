// System uptime collector: gathers seconds since last boot.
package collector

import (
	"context"
	"fmt"

	"github.com/Guliveer/vitalis/deck/internal/models"
)

// UptimeCollector collects system uptime in seconds.
type UptimeCollector struct {
	stats HostStats
}

// NewUptimeCollector creates a new uptime collector.
func NewUptimeCollector(stats HostStats) *UptimeCollector {
	return &UptimeCollector{stats: stats}
}

// Kind returns models.KindUptime.
func (c *UptimeCollector) Kind() models.MetricKind { return models.KindUptime }

// Collect gathers the system uptime in seconds since boot.
func (c *UptimeCollector) Collect(ctx context.Context) (models.Sample, error) {
	uptime, err := c.stats.Uptime(ctx)
	if err != nil {
		return models.Sample{}, fmt.Errorf("read uptime: %w", err)
	}
	return models.UptimeSample(uptime), nil
}
