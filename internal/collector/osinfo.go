// OS info collector: resolves a long, human-readable OS name such as
// "Ubuntu 22.04" or "macOS 14.2.1".
//
// Lookup order:
//   - gopsutil platform information
//   - kernel identity from the platform's native API
//   - "Unknown"
//
// The result is cached since the OS does not change while running.
package collector

import (
	"context"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// UnknownOS is reported when no lookup produced a name.
const UnknownOS = "Unknown"

// OSInfo resolves and caches the long OS name.
type OSInfo struct {
	stats  HostStats
	kernel func() (string, error)
	logger *zap.Logger

	once sync.Once
	name string
}

// NewOSInfo creates an OS name resolver.
func NewOSInfo(stats HostStats, logger *zap.Logger) *OSInfo {
	return &OSInfo{
		stats:  stats,
		kernel: kernelName,
		logger: logger.Named("osinfo"),
	}
}

// LongName returns the cached OS name, resolving it on first use.
func (o *OSInfo) LongName(ctx context.Context) string {
	o.once.Do(func() {
		o.name = o.resolve(ctx)
		o.logger.Debug("Resolved OS name", zap.String("name", o.name))
	})
	return o.name
}

func (o *OSInfo) resolve(ctx context.Context) string {
	platform, version, err := o.stats.Platform(ctx)
	if err != nil {
		o.logger.Warn("Platform lookup failed", zap.Error(err))
	} else if name := platformName(platform, version); name != "" {
		return name
	}

	if o.kernel != nil {
		name, err := o.kernel()
		if err != nil {
			o.logger.Warn("Kernel lookup failed", zap.Error(err))
		} else if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}

	return UnknownOS
}

// platformName builds "<Platform> <version>" from gopsutil's lowercase
// platform identifiers.
func platformName(platform, version string) string {
	platform = strings.TrimSpace(platform)
	version = strings.TrimSpace(version)
	if platform == "" {
		return ""
	}

	lower := strings.ToLower(platform)
	switch {
	case lower == "darwin":
		platform = "macOS"
	case strings.HasPrefix(lower, "microsoft "):
		platform = platform[len("microsoft "):]
	default:
		platform = capitalize(platform)
	}

	if version == "" {
		return platform
	}
	return platform + " " + version
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
