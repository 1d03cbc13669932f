//go:build windows

package collector

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// kernelName returns the NT version, e.g. "Windows 10.0.22631".
func kernelName() (string, error) {
	v := windows.RtlGetVersion()
	if v == nil {
		return "", fmt.Errorf("RtlGetVersion returned no data")
	}
	return fmt.Sprintf("Windows %d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber), nil
}
