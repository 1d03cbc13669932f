// Package models defines the metric kinds, samples and display text shared
// by the sampler, the formatter and the broadcast loop.
package models

import "fmt"

// MetricKind identifies one category of metric shown on a display surface.
type MetricKind int

const (
	KindCPU MetricKind = iota
	KindMemory
	KindUptime
	// KindOS is set once when an instance appears; it is never sampled
	// by the broadcast loop.
	KindOS
)

// Action identifiers registered with the host. They must stay stable:
// the host persists instances by these strings.
const (
	CPUActionID    = "dev.vitalis.deck.cpu"
	MemoryActionID = "dev.vitalis.deck.ram"
	UptimeActionID = "dev.vitalis.deck.uptime"
	OSActionID     = "dev.vitalis.deck.os"
)

// ID returns the action identifier used to query the instance directory.
func (k MetricKind) ID() string {
	switch k {
	case KindCPU:
		return CPUActionID
	case KindMemory:
		return MemoryActionID
	case KindUptime:
		return UptimeActionID
	case KindOS:
		return OSActionID
	default:
		return ""
	}
}

func (k MetricKind) String() string {
	switch k {
	case KindCPU:
		return "cpu"
	case KindMemory:
		return "memory"
	case KindUptime:
		return "uptime"
	case KindOS:
		return "os"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Periodic returns the kinds refreshed every cycle, in broadcast order.
func Periodic() []MetricKind {
	return []MetricKind{KindCPU, KindMemory, KindUptime}
}

// All returns every kind the plugin registers with the host.
func All() []MetricKind {
	return []MetricKind{KindCPU, KindMemory, KindUptime, KindOS}
}

// Sample is a point-in-time value for one periodic kind.
// Only the field matching Kind is meaningful; use the constructors.
type Sample struct {
	Kind          MetricKind
	CPUPercent    float64
	MemoryUsed    uint64
	UptimeSeconds uint64
}

// CPUSample creates a CPU sample, clamping to [0,100].
func CPUSample(percent float64) Sample {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	return Sample{Kind: KindCPU, CPUPercent: percent}
}

// MemorySample creates a memory sample from used bytes.
func MemorySample(used uint64) Sample {
	return Sample{Kind: KindMemory, MemoryUsed: used}
}

// UptimeSample creates an uptime sample from total seconds since boot.
func UptimeSample(seconds uint64) Sample {
	return Sample{Kind: KindUptime, UptimeSeconds: seconds}
}

// DisplayText is the short text pushed to an instance: one primary line and
// an optional secondary line.
type DisplayText struct {
	Primary   string
	Secondary string
}

// Title joins the lines the way the host renders multi-line titles.
func (t DisplayText) Title() string {
	if t.Secondary == "" {
		return t.Primary
	}
	return t.Primary + "\n" + t.Secondary
}
