//go:build !windows

package config

// Platform-specific path defaults for Linux and other unix systems

// GetDefaultConfigLocation returns the default configuration file path.
func GetDefaultConfigLocation() string {
	return "/etc/pub/config.yml"
}

// GetDefaultRootDirectory returns the default root directory.
func GetDefaultRootDirectory() string {
	return "/var/lib/pub"
}

// GetDefaultLogDirectory returns the default log directory.
func GetDefaultLogDirectory() string {
	return "/var/log/pub"
}
