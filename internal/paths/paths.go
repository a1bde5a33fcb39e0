// Package paths resolves where zbirka keeps its configuration and data.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "zbirka"

// Environment variables that override the platform defaults.
const (
	EnvConfigDir = "ZBIRKA_CONFIG_DIR"
	EnvDataDir   = "ZBIRKA_DATA_DIR"
)

// DatabaseFile is the name of the SQLite file inside the data directory.
const DatabaseFile = "zbirka.db"

// platformDir is swapped out in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/zbirka (fallback ~/.config/zbirka)
// macOS:   ~/Library/Application Support/zbirka
// Windows: %APPDATA%/zbirka
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultDataDir returns the platform data directory. Outside Linux it is
// the same as the configuration directory.
//
// Linux: $XDG_DATA_HOME/zbirka (fallback ~/.local/share/zbirka)
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	return DefaultConfigDir()
}

func xdgDir(env, fallback string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// ResolveConfigDir applies flag > ZBIRKA_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(flag, EnvConfigDir, DefaultConfigDir)
}

// ResolveDataDir applies flag > ZBIRKA_DATA_DIR > DefaultDataDir.
func ResolveDataDir(flag string) (string, error) {
	return resolve(flag, EnvDataDir, DefaultDataDir)
}

func resolve(flag, env string, fallback func() (string, error)) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if v := os.Getenv(env); v != "" {
		return filepath.Abs(v)
	}
	return fallback()
}
