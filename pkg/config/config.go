// Package config loads settings from an optional TOML file and from
// ATOMFLOW_ environment variables. Environment variables win.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "ATOMFLOW"

// Config is everything that can be set from outside.
type Config struct {
	CIF CIFConfig `mapstructure:"cif"`
	Log LogConfig `mapstructure:"log"`
}

// CIFConfig controls the CIF reader and writer.
type CIFConfig struct {
	Width      int      `mapstructure:"width"`      // wrap width on write
	Categories []string `mapstructure:"categories"` // read only these; empty means all
}

// LogConfig says where log output goes. Dest is "" (nowhere), "stdout",
// "stderr" or a file name.
type LogConfig struct {
	Dest  string `mapstructure:"dest"`
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SetDefaults puts the defaults in v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("cif.width", 80)
	v.SetDefault("cif.categories", []string{})
	v.SetDefault("log.dest", "")
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

// NewViper returns a viper with defaults and environment binding. If
// path is not empty, the file is read too.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}
	return v, nil
}

// LoadWithViper unmarshals and checks the configuration in v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads the file at path, which may be "", and the environment.
func Load(path string) (*Config, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// Default is the configuration with nothing set.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.CIF.Width < 10 {
		return errors.WithHint(errors.Newf("cif.width %d is too small", c.CIF.Width), "use at least 10")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
