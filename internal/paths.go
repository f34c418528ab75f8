package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "targus"

// AppPaths holds the per-user directories targus reads and writes
type AppPaths struct {
	ConfigDir string // config.yaml lives here
	DataDir   string // local storage lives here
}

// DetectAppPaths resolves the config and data directories for this OS.
// XDG_CONFIG_HOME and XDG_DATA_HOME are honoured on Linux.
func DetectAppPaths() (AppPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return AppPaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}
	return appPathsFor(runtime.GOOS, home, os.Getenv), nil
}

func appPathsFor(goos, home string, getenv func(string) string) AppPaths {
	switch goos {
	case "darwin":
		base := filepath.Join(home, "Library", "Application Support", appName)
		return AppPaths{ConfigDir: base, DataDir: base}
	case "windows":
		base := getenv("AppData")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		dir := filepath.Join(base, appName)
		return AppPaths{ConfigDir: dir, DataDir: dir}
	default:
		configBase := getenv("XDG_CONFIG_HOME")
		if configBase == "" {
			configBase = filepath.Join(home, ".config")
		}
		dataBase := getenv("XDG_DATA_HOME")
		if dataBase == "" {
			dataBase = filepath.Join(home, ".local", "share")
		}
		return AppPaths{
			ConfigDir: filepath.Join(configBase, appName),
			DataDir:   filepath.Join(dataBase, appName),
		}
	}
}

// ConfigFile returns the default config file location
func (p AppPaths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DefaultStoragePath returns where a backend keeps its data by default
func (p AppPaths) DefaultStoragePath(backend string) string {
	if backend == BackendFile {
		return filepath.Join(p.DataDir, "kv")
	}
	return filepath.Join(p.DataDir, "storage.db")
}
