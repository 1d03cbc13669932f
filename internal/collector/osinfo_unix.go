//go:build linux || darwin

package collector

import (
	"golang.org/x/sys/unix"
)

// kernelName returns "<sysname> <release>" from uname(2), e.g. "Linux 6.5.0".
func kernelName() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", err
	}
	sysname := unix.ByteSliceToString(u.Sysname[:])
	release := unix.ByteSliceToString(u.Release[:])
	if sysname == "Darwin" {
		sysname = "macOS"
	}
	return sysname + " " + release, nil
}
