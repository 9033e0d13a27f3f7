package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir   string
	DataDir   string
	ConfigDir string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			configHome = filepath.Join(homeDir, ".config")
		}

		defaultPaths = &Paths{
			HomeDir:   homeDir,
			DataDir:   filepath.Join(homeDir, ".vc-ranger"),
			ConfigDir: filepath.Join(configHome, "vc-ranger"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

// LogFile returns the log file of the named binary inside the data dir.
func LogFile(binary string) string {
	ensureDefaultPaths()
	return filepath.Join(defaultPaths.DataDir, binary+".log")
}

// ConfigFile returns the default location of the ranger-cmd config file.
func ConfigFile() string {
	ensureDefaultPaths()
	return filepath.Join(defaultPaths.ConfigDir, "config.yaml")
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
