/*
config.go - Runtime configuration for hrops

PURPOSE:
  One Config struct for every command. Values are layered, later layers
  winning:

    1. Defaults        Default()
    2. YAML file       --config / HROPS_CONFIG
    3. .env file       loaded into the process environment, never
                       overriding variables already set
    4. Environment     HROPS_* variables
    5. Flags           applied by cmd/hrops, then Validate() again

VALIDATION:
  Struct tags checked with validator/v10 after loading.

SEE ALSO:
  - cmd/hrops/main.go: Flag overrides
  - rules/load.go: Rule file referenced by Rules.Path
*/
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "HROPS_"

// Config is the full runtime configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Rules    RulesConfig    `yaml:"rules"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Company  string         `yaml:"company" validate:"required"`
	Log      LogConfig      `yaml:"log"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr           string   `yaml:"addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// RedisConfig configures the notification queue. An empty Addr keeps
// notifications in process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	QueueKey string `yaml:"queue_key" validate:"required"`
}

// RulesConfig points at an optional rule file overlaying the defaults.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig holds the cron specs of the periodic jobs.
type ScheduleConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Timezone      string `yaml:"timezone"`
	Reminders     string `yaml:"reminders"`
	SickReset     string `yaml:"sick_reset"`
	FloatingReset string `yaml:"floating_reset"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Database: DatabaseConfig{Path: "hrops.db"},
		Redis:    RedisConfig{QueueKey: "hrops:notifications"},
		Schedule: ScheduleConfig{
			Enabled:       true,
			Timezone:      "America/Los_Angeles",
			Reminders:     "0 6 * * *",
			SickReset:     "0 1 1 10 *",
			FloatingReset: "0 1 1 1 *",
		},
		Company: "Warp Transit",
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config from the defaults, the YAML file at path and the
// environment. Empty paths are skipped; a missing envFile is not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from HROPS_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("HTTP_ADDR", &c.HTTP.Addr)
	if v, ok := lookup(EnvPrefix + "HTTP_ALLOWED_ORIGINS"); ok {
		c.HTTP.AllowedOrigins = splitList(v)
	}
	str("DATABASE_PATH", &c.Database.Path)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	integer("REDIS_DB", &c.Redis.DB)
	str("REDIS_QUEUE_KEY", &c.Redis.QueueKey)
	str("RULES_PATH", &c.Rules.Path)
	boolean("SCHEDULE_ENABLED", &c.Schedule.Enabled)
	str("SCHEDULE_TIMEZONE", &c.Schedule.Timezone)
	str("SCHEDULE_REMINDERS", &c.Schedule.Reminders)
	str("SCHEDULE_SICK_RESET", &c.Schedule.SickReset)
	str("SCHEDULE_FLOATING_RESET", &c.Schedule.FloatingReset)
	str("COMPANY", &c.Company)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

// Validate checks the struct tags and the timezone.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	if c.Schedule.Timezone != "" {
		if _, err := c.Schedule.Location(); err != nil {
			return fmt.Errorf("invalid configuration: schedule timezone: %w", err)
		}
	}
	return nil
}

// Location resolves the schedule timezone, defaulting to local time.
func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// Logger builds the root logger.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
