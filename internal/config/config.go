// Package config loads daemon settings from flags, environment, an optional
// YAML file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PADLINK"

var ErrInvalid = errors.New("invalid config")

// Config represents the daemon configuration.
type Config struct {
	Listen   string         `mapstructure:"listen"`
	Server   string         `mapstructure:"server"`
	Input    InputConfig    `mapstructure:"input"`
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Tray     TrayConfig     `mapstructure:"tray"`
	Notify   NotifyConfig   `mapstructure:"notify"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

type InputConfig struct {
	Backend      string        `mapstructure:"backend"`
	Device       string        `mapstructure:"device"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Deadzone     float64       `mapstructure:"deadzone"`
}

// EndpointConfig is the UDP endpoint configured at startup. An empty
// address leaves the endpoint unset until a setAddress call.
type EndpointConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
}

type AuthConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Verbose    bool   `mapstructure:"verbose"`
}

type TrayConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type NotifyConfig struct {
	Desktop bool `mapstructure:"desktop"`
}

// Input backends.
const (
	BackendSDL    = "sdl"
	BackendJoydev = "joydev"
	BackendNone   = "none"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("server", "ws://localhost:8080/ws")
	v.SetDefault("input.backend", BackendSDL)
	v.SetDefault("input.device", "/dev/input/js0")
	v.SetDefault("input.poll_interval", 16*time.Millisecond)
	v.SetDefault("input.deadzone", 0.05)
	v.SetDefault("endpoint.address", "")
	v.SetDefault("endpoint.port", 0)
	v.SetDefault("auth.secret", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.verbose", false)
	v.SetDefault("tray.enabled", runtime.GOOS == "windows")
	v.SetDefault("notify.desktop", runtime.GOOS == "linux")
}

// NewFlagSet returns the command line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "config file (default padlink.yaml in . or the user config dir)")
	fs.String("listen", "", "HTTP listen address")
	fs.String("server", "", "daemon websocket URL for call and watch")
	fs.String("backend", "", "input backend: sdl, joydev or none")
	fs.String("device", "", "joystick device for the joydev backend")
	fs.Duration("poll-interval", 0, "input poll interval")
	fs.Float64("deadzone", 0, "analog stick deadzone in [0,1)")
	fs.String("address", "", "initial UDP endpoint address")
	fs.Int("port", 0, "initial UDP endpoint port")
	fs.String("secret", "", "HS256 secret for websocket tokens")
	fs.String("log-file", "", "also write logs to this file, rotated")
	fs.BoolP("verbose", "v", false, "log raw input events")
	fs.Bool("tray", false, "show the system tray icon")
	fs.Bool("notify", false, "send desktop notifications")
	return fs
}

var flagKeys = map[string]string{
	"listen":        "listen",
	"server":        "server",
	"backend":       "input.backend",
	"device":        "input.device",
	"poll-interval": "input.poll_interval",
	"deadzone":      "input.deadzone",
	"address":       "endpoint.address",
	"port":          "endpoint.port",
	"secret":        "auth.secret",
	"log-file":      "log.file",
	"verbose":       "log.verbose",
	"tray":          "tray.enabled",
	"notify":        "notify.desktop",
}

// Load parses args and returns the merged configuration together with the
// remaining positional arguments.
func Load(args []string) (*Config, []string, error) {
	fs := NewFlagSet("padlink")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	setDefaults(v)
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file, _ := fs.GetString("config")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("padlink")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "padlink"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := validateConfig(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func validateConfig(cfg *Config) error {
	switch cfg.Input.Backend {
	case BackendSDL, BackendJoydev, BackendNone:
	default:
		return fmt.Errorf("%w: unknown input backend %q", ErrInvalid, cfg.Input.Backend)
	}
	if cfg.Input.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %s", ErrInvalid, cfg.Input.PollInterval)
	}
	if cfg.Input.Deadzone < 0 || cfg.Input.Deadzone >= 1 {
		return fmt.Errorf("%w: deadzone must be in [0,1), got %g", ErrInvalid, cfg.Input.Deadzone)
	}
	if cfg.Endpoint.Port < 0 || cfg.Endpoint.Port > 65535 {
		return fmt.Errorf("%w: endpoint port %d out of range", ErrInvalid, cfg.Endpoint.Port)
	}
	if cfg.Input.Backend == BackendJoydev && cfg.Input.Device == "" {
		return fmt.Errorf("%w: joydev backend needs a device", ErrInvalid)
	}
	if cfg.Log.File != "" && (cfg.Log.MaxSizeMB <= 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0) {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalid)
	}
	return nil
}
