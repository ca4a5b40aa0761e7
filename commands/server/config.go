/*
Package server provides the commands run by the migd daemon.

Settings are read with viper from config.yml in the home directory and
can be overridden by MIG_ prefixed environment variables, for example
MIG_HTTP_ADDRESS for http.address.
*/
package server

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/errors"
)

// Configuration keys.
const (
	FlagHome          = "home"
	KeyDBPath         = "db_path"
	KeyChainID        = "chain_id"
	KeyHTTPAddress    = "http.address"
	KeyLogLevel       = "log.level"
	KeyGenesis        = "genesis"
	KeyCommitInterval = "commit_interval"
)

const (
	// ConfigFile is the name of the configuration file in the home
	// directory.
	ConfigFile = "config.yml"

	// EnvPrefix is prepended to every environment override.
	EnvPrefix = "MIG"
)

// DefaultHome is used when no home directory is given.
func DefaultHome() string {
	return filepath.Join(os.ExpandEnv("$HOME"), ".mig")
}

func setDefaults() {
	viper.SetDefault(KeyDBPath, "data")
	viper.SetDefault(KeyHTTPAddress, "localhost:8080")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyGenesis, "genesis.json")
	viper.SetDefault(KeyCommitInterval, "5s")
}

// SetupConfig prepares viper to read settings for the given home
// directory. A missing config file is not an error, defaults and the
// environment are used instead.
func SetupConfig(home string) error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()
	viper.Set(FlagHome, home)

	path := filepath.Join(home, ConfigFile)
	if !fileExists(path) {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "read %s: %s", path, err)
	}
	return nil
}

// Config holds the daemon settings with all paths resolved.
type Config struct {
	Home           string
	DBPath         string
	ChainID        string
	HTTPAddress    string
	LogLevel       string
	Genesis        string
	CommitInterval time.Duration
}

// LoadConfig reads the current settings. Relative paths are resolved
// against the home directory.
func LoadConfig() (*Config, error) {
	home := viper.GetString(FlagHome)
	if home == "" {
		home = DefaultHome()
	}
	c := &Config{
		Home:           home,
		DBPath:         inHome(home, viper.GetString(KeyDBPath)),
		ChainID:        viper.GetString(KeyChainID),
		HTTPAddress:    viper.GetString(KeyHTTPAddress),
		LogLevel:       viper.GetString(KeyLogLevel),
		Genesis:        inHome(home, viper.GetString(KeyGenesis)),
		CommitInterval: viper.GetDuration(KeyCommitInterval),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate returns an error if the settings cannot be used to start
// the daemon.
func (c *Config) Validate() error {
	if c.ChainID != "" && !mig.IsValidChainID(c.ChainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "%s: %q", KeyChainID, c.ChainID)
	}
	if c.HTTPAddress == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "%s is required", KeyHTTPAddress)
	}
	if c.CommitInterval <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "%s must be positive", KeyCommitInterval)
	}
	return nil
}

func inHome(home, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(home, path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
