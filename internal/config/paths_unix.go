//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	paths := pluginDirPaths()
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".vitalis", "deck.yaml"))
	}
	return append(paths, "/etc/vitalis/deck.yaml")
}
