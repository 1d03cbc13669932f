//go:build !linux && !darwin && !windows

package collector

import (
	"errors"
	"runtime"
)

func kernelName() (string, error) {
	return "", errors.New("no kernel identity lookup on " + runtime.GOOS)
}
