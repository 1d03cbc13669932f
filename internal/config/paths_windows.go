//go:build windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	paths := pluginDirPaths()
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		paths = append(paths, filepath.Join(local, "Vitalis", "deck.yaml"))
	}
	if programData := os.Getenv("ProgramData"); programData != "" {
		paths = append(paths, filepath.Join(programData, "Vitalis", "deck.yaml"))
	}
	return paths
}
