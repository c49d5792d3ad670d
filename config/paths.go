package config

import (
	"os"
	"path/filepath"
)

const AppName = "seamless"

// homeOverride redirects every path below, for tests.
var homeOverride string

func home() (string, error) {
	if homeOverride != "" {
		return homeOverride, nil
	}
	return os.UserHomeDir()
}

func GetConfigDir() (string, error) {
	homeDir, err := home()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", AppName)

	// Ensure the directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return configDir, nil
}

func GetConfigFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, AppName+".yaml"), nil
}

func GetDatabasePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName+".db"), nil
}

func GetLogsDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	logsDir := filepath.Join(configDir, "logs")

	// Ensure the directory exists
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", err
	}

	return logsDir, nil
}

func GetLogPath() (string, error) {
	logsDir, err := GetLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(logsDir, AppName+".log"), nil
}
