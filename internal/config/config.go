// Package config loads the optional YAML config file, BAUGEO_* environment
// variables and defaults through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BAUGEO_STORAGE_DRIVER.
const EnvPrefix = "BAUGEO"

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
	File   string `mapstructure:"file"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlitePath"`
	PostgresDSN string `mapstructure:"postgresDsn"`
}

type GeocodeConfig struct {
	Provider  string        `mapstructure:"provider"`
	Token     string        `mapstructure:"token"`
	URL       string        `mapstructure:"url"`
	UserAgent string        `mapstructure:"userAgent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type TilesConfig struct {
	URL         string        `mapstructure:"url"`
	Attribution string        `mapstructure:"attribution"`
	Probe       bool          `mapstructure:"probe"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	IdleTimeout     time.Duration `mapstructure:"idleTimeout"`
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
	Max             int           `mapstructure:"max"`
}

// Config is the resolved application configuration.
type Config struct {
	Log     LogConfig
	Storage StorageConfig
	Geocode GeocodeConfig
	Tiles   TilesConfig
	Session SessionConfig
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.file", "")

	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.sqlitePath", "")
	viper.SetDefault("storage.postgresDsn", "")

	viper.SetDefault("geocode.provider", "nominatim")
	viper.SetDefault("geocode.token", "")
	viper.SetDefault("geocode.url", "")
	viper.SetDefault("geocode.userAgent", "bau-geo/1.0")
	viper.SetDefault("geocode.timeout", "10s")

	viper.SetDefault("tiles.url", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	viper.SetDefault("tiles.attribution", "© OpenStreetMap contributors")
	viper.SetDefault("tiles.probe", true)
	viper.SetDefault("tiles.timeout", "5s")

	viper.SetDefault("session.idleTimeout", "2h")
	viper.SetDefault("session.cleanupInterval", "10m")
	viper.SetDefault("session.max", 100)
}

// Load reads configFile if given and resolves every setting. A missing
// configFile is an error; an empty one means defaults plus environment.
func Load(configFile string) (Config, error) {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Config{
		Log: LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
			File:   viper.GetString("log.file"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(viper.GetString("storage.driver")),
			SQLitePath:  viper.GetString("storage.sqlitePath"),
			PostgresDSN: viper.GetString("storage.postgresDsn"),
		},
		Geocode: GeocodeConfig{
			Provider:  strings.ToLower(viper.GetString("geocode.provider")),
			Token:     viper.GetString("geocode.token"),
			URL:       viper.GetString("geocode.url"),
			UserAgent: viper.GetString("geocode.userAgent"),
			Timeout:   viper.GetDuration("geocode.timeout"),
		},
		Tiles: TilesConfig{
			URL:         viper.GetString("tiles.url"),
			Attribution: viper.GetString("tiles.attribution"),
			Probe:       viper.GetBool("tiles.probe"),
			Timeout:     viper.GetDuration("tiles.timeout"),
		},
		Session: SessionConfig{
			IdleTimeout:     viper.GetDuration("session.idleTimeout"),
			CleanupInterval: viper.GetDuration("session.cleanupInterval"),
			Max:             viper.GetInt("session.max"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "file", "duckdb", "sqlite":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage.postgresDsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	switch c.Geocode.Provider {
	case "mapbox", "nominatim", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown geocode.provider %q", c.Geocode.Provider))
	}
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, errors.New("session.idleTimeout must be positive"))
	}
	if c.Session.Max <= 0 {
		errs = append(errs, errors.New("session.max must be positive"))
	}
	return errors.Join(errs...)
}
