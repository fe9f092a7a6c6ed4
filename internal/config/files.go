package config

import (
	"os"
	"path/filepath"
)

const AppName = "livetable"

var (
	// AppConfigDir is ~/.config/livetable
	AppConfigDir string

	// AppConfigFile is ~/.config/livetable/livetable.yaml
	AppConfigFile string

	// AppEndpointsFile is ~/.config/livetable/endpoints.ini
	AppEndpointsFile string
)

// InitLocs initializes the application directory paths. It respects
// XDG environment variables if set.
func InitLocs() error {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configHome = filepath.Join(home, ".config")
	}

	AppConfigDir = filepath.Join(configHome, AppName)
	AppConfigFile = filepath.Join(AppConfigDir, AppName+".yaml")
	AppEndpointsFile = filepath.Join(AppConfigDir, "endpoints.ini")

	return os.MkdirAll(AppConfigDir, 0700)
}
