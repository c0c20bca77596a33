package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config holds everything roomperms needs to reach a homeserver.
type Config struct {
	HomeserverURL  string        `validate:"required,url"`
	AccessToken    string        `validate:"required"`
	Room           string        `validate:"omitempty,startswith=!|startswith=#"`
	RequestTimeout time.Duration `validate:"gt=0"`
	Log            Log

	// Path is the resolved config file location.
	Path string `validate:"-"`
}

// Log configures the rolling log file and the console writer.
type Log struct {
	Level      string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	Dir        string `validate:"required"`
	File       string `validate:"required"`
	MaxSizeMB  int    `validate:"gte=0"`
	MaxBackups int    `validate:"gte=0"`
	MaxAgeDays int    `validate:"gte=0"`
	Console    bool
}

// FilePath returns the full path of the log file.
func (l Log) FilePath() string {
	return filepath.Join(l.Dir, l.File)
}

// env lists the variables that override the file, all prefixed ROOMPERMS_.
type env struct {
	HomeserverURL  string        `envconfig:"HOMESERVER_URL"`
	AccessToken    string        `envconfig:"ACCESS_TOKEN"`
	Room           string        `envconfig:"ROOM"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
	LogDir         string        `envconfig:"LOG_DIR"`
}

const (
	namespace             = "ROOMPERMS"
	defaultConfigPath     = "~/.config/roomperms/config.toml"
	defaultLogDir         = "~/.local/state/roomperms"
	defaultLogFile        = "roomperms.log"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
	defaultMaxSizeMB      = 10
	defaultMaxBackups     = 3
	defaultMaxAgeDays     = 28
)

var validate = validator.New()

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		RequestTimeout: defaultRequestTimeout,
		Log: Log{
			Level:      defaultLogLevel,
			Dir:        mustExpand(defaultLogDir),
			File:       defaultLogFile,
			MaxSizeMB:  defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAgeDays: defaultMaxAgeDays,
		},
	}
}

// Load reads the config file at path (the default location when empty),
// falls back to defaults when it is missing, then applies environment
// overrides. The result is not validated; call Validate before use.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Path = resolved

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, errors.Wrap(err, "read config")
	default:
		if err := applyFile(&cfg, data); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.HomeserverURL = normalizeURL(cfg.HomeserverURL)
	cfg.Log.Dir = mustExpand(cfg.Log.Dir)
	return cfg, nil
}

// Validate checks that the configuration can be used to reach a room.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func applyFile(cfg *Config, data []byte) error {
	var raw struct {
		HomeserverURL  string `toml:"homeserver_url"`
		AccessToken    string `toml:"access_token"`
		Room           string `toml:"room"`
		RequestTimeout string `toml:"request_timeout"`
		Log            struct {
			Level      string `toml:"level"`
			Dir        string `toml:"dir"`
			File       string `toml:"file"`
			MaxSizeMB  int    `toml:"max_size_mb"`
			MaxBackups int    `toml:"max_backups"`
			MaxAgeDays int    `toml:"max_age_days"`
			Console    bool   `toml:"console"`
		} `toml:"log"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "parse config")
	}

	setString(&cfg.HomeserverURL, raw.HomeserverURL)
	setString(&cfg.AccessToken, raw.AccessToken)
	setString(&cfg.Room, raw.Room)
	if timeout := strings.TrimSpace(raw.RequestTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return errors.Wrapf(err, "parse request_timeout %q", timeout)
		}
		cfg.RequestTimeout = d
	}

	setString(&cfg.Log.Level, raw.Log.Level)
	setString(&cfg.Log.Dir, raw.Log.Dir)
	setString(&cfg.Log.File, raw.Log.File)
	setInt(&cfg.Log.MaxSizeMB, raw.Log.MaxSizeMB)
	setInt(&cfg.Log.MaxBackups, raw.Log.MaxBackups)
	setInt(&cfg.Log.MaxAgeDays, raw.Log.MaxAgeDays)
	cfg.Log.Console = raw.Log.Console
	return nil
}

func applyEnv(cfg *Config) error {
	var e env
	if err := envconfig.Process(namespace, &e); err != nil {
		return errors.Wrap(err, "load environment")
	}
	setString(&cfg.HomeserverURL, e.HomeserverURL)
	setString(&cfg.AccessToken, e.AccessToken)
	setString(&cfg.Room, e.Room)
	setString(&cfg.Log.Level, e.LogLevel)
	setString(&cfg.Log.Dir, e.LogDir)
	if e.RequestTimeout > 0 {
		cfg.RequestTimeout = e.RequestTimeout
	}
	return nil
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func setInt(dst *int, value int) {
	if value > 0 {
		*dst = value
	}
}

func normalizeURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" || strings.Contains(trimmed, "://") {
		return trimmed
	}
	return "https://" + trimmed
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ to the home directory and returns an
// absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", errors.Wrap(err, "resolve absolute path")
	}
	return abs, nil
}
