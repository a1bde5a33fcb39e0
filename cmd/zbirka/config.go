package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDB         = "db"
	cfgKeyRemote     = "remote"
	cfgKeyToken      = "token"
	cfgKeyClientName = "client_name"
	cfgKeyAddr       = "addr"
	cfgKeyLog        = "log"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# zbirka configuration

# SQLite database for local use and for "zbirka serve".
# Defaults to zbirka.db in the data directory.
# db:

# Server to talk to instead of the local database. "zbirka login" fills
# in the token.
# remote: http://localhost:8080
# token:

# Name this machine reports when logging in to a server.
client_name: cli

# Listen address for "zbirka serve".
addr: ":8080"

# Log file for "zbirka serve" (optional).
# log:
`

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run. Every key can also be set through a
// ZBIRKA_<KEY> environment variable.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyClientName, "cli")
	v.SetDefault(cfgKeyAddr, ":8080")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("ZBIRKA")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// saveCredentials stores the server and its token in config.yaml. The
// file holds a bearer token, so it is kept private.
func saveCredentials(v *viper.Viper, configDir, remote, token string) error {
	v.Set(cfgKeyRemote, remote)
	v.Set(cfgKeyToken, token)

	path := filepath.Join(configDir, configFileExt)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return os.Chmod(path, 0o600)
}
