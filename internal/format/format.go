// Package format renders metric samples as short display text.
// All functions are pure: the same input always yields the same text.
package format

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Guliveer/vitalis/deck/internal/models"
)

const bytesPerGB = 1073741824.0

// ErrKindMismatch is returned when a sample cannot be formatted with the
// rule of its declared kind.
var ErrKindMismatch = errors.New("sample kind has no formatting rule")

// CPU renders a usage percentage rounded to the nearest whole percent.
func CPU(percent float64) models.DisplayText {
	return models.DisplayText{Primary: fmt.Sprintf("%d%%", int64(math.Round(percent)))}
}

// Memory renders used bytes as gigabytes with one decimal place.
func Memory(usedBytes uint64) models.DisplayText {
	return models.DisplayText{Primary: fmt.Sprintf("%.1fGB", float64(usedBytes)/bytesPerGB)}
}

// UptimeParts is the days/hours/minutes/seconds decomposition of an uptime.
type UptimeParts struct {
	Days    uint64
	Hours   uint64
	Minutes uint64
	Seconds uint64
}

// SplitUptime decomposes total seconds with floor division.
func SplitUptime(total uint64) UptimeParts {
	return UptimeParts{
		Days:    total / 86400,
		Hours:   (total % 86400) / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

// Uptime renders total seconds on two lines: "1d 01h" / "00m 00s".
func Uptime(totalSeconds uint64) models.DisplayText {
	p := SplitUptime(totalSeconds)
	return models.DisplayText{
		Primary:   fmt.Sprintf("%dd %02dh", p.Days, p.Hours),
		Secondary: fmt.Sprintf("%02dm %02ds", p.Minutes, p.Seconds),
	}
}

// OS renders an OS name one word per line.
func OS(name string) models.DisplayText {
	if name == "" {
		name = "Unknown"
	}
	return models.DisplayText{Primary: strings.ReplaceAll(name, " ", "\n")}
}

// Format applies the rule belonging to the sample's kind.
func Format(s models.Sample) (models.DisplayText, error) {
	switch s.Kind {
	case models.KindCPU:
		return CPU(s.CPUPercent), nil
	case models.KindMemory:
		return Memory(s.MemoryUsed), nil
	case models.KindUptime:
		return Uptime(s.UptimeSeconds), nil
	default:
		return models.DisplayText{}, fmt.Errorf("%w: %s", ErrKindMismatch, s.Kind)
	}
}
