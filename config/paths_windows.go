//go:build windows

package config

import (
	"os"
	"path/filepath"
)

// Platform-specific path defaults for Windows

func programData() string {
	if p := os.Getenv("PROGRAMDATA"); p != "" {
		return p
	}
	return "C:\\ProgramData"
}

// GetDefaultConfigLocation returns the default configuration file path for Windows.
func GetDefaultConfigLocation() string {
	return filepath.Join(programData(), "Pub", "config.yml")
}

// GetDefaultRootDirectory returns the default root directory for Windows.
func GetDefaultRootDirectory() string {
	return filepath.Join(programData(), "Pub")
}

// GetDefaultLogDirectory returns the default log directory for Windows.
func GetDefaultLogDirectory() string {
	return filepath.Join(programData(), "Pub", "logs")
}
