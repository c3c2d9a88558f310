package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"go-wetta-dashboard/internal/registry"
)

// Config holds runtime configuration for the dashboard.
type Config struct {
	Env             string        `koanf:"env"`
	LogLevel        string        `koanf:"log_level"`
	ListenAddr      string        `koanf:"listen_addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	StationName     string        `koanf:"station_name"`

	// DBDriver is "mysql" for the station database or "sqlite" for a local file.
	DBDriver       string        `koanf:"db_driver"`
	DBHost         string        `koanf:"db_host"`
	DBPort         int           `koanf:"db_port"`
	DBUser         string        `koanf:"db_user"`
	DBPassword     string        `koanf:"db_password"`
	DBName         string        `koanf:"db_name"`
	DBConnTimeout  time.Duration `koanf:"db_conn_timeout"`
	DBQueryTimeout time.Duration `koanf:"db_query_timeout"`
	SQLitePath     string        `koanf:"sqlite_path"`

	// Timezone is the display timezone; readings are stored in UTC.
	Timezone string `koanf:"timezone"`
	// EarliestDate bounds every date picker and query window (YYYY-MM-DD).
	EarliestDate    string `koanf:"earliest_date"`
	PollIntervalMS  int    `koanf:"poll_interval_ms"`
	EmptyCategories string `koanf:"empty_categories"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Env:             "dev",
		LogLevel:        "info",
		ListenAddr:      ":8050",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    20 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		StationName:     "Wetta Wilsum",
		DBDriver:        "mysql",
		DBHost:          "127.0.0.1",
		DBPort:          3306,
		DBUser:          "wetta",
		DBPassword:      "",
		DBName:          "wetta",
		DBConnTimeout:   5 * time.Second,
		DBQueryTimeout:  10 * time.Second,
		SQLitePath:      "wetta.db",
		Timezone:        "Europe/Berlin",
		EarliestDate:    "2021-07-23",
		PollIntervalMS:  60000,
		EmptyCategories: string(registry.EmptyCategoriesReject),
	}
}

// Load layers configuration, lowest precedence first:
//  1. Default()
//  2. YAML file at path, or APP_CONFIG_FILE when path is empty
//  3. APP_* entries of the first secrets env file found
//  4. non-empty APP_* environment variables
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = strings.TrimSpace(os.Getenv("APP_CONFIG_FILE"))
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if secrets := secretsFile(); secrets != "" {
		if err := k.Load(file.Provider(secrets), dotenv.ParserEnv("APP_", ".", envKey)); err != nil {
			return Config{}, fmt.Errorf("secrets file %s: %w", secrets, err)
		}
	}

	// An empty variable counts as unset so it cannot mask a secret.
	envProvider := env.ProviderWithValue("APP_", ".", func(key, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		return envKey(key), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("config decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Env {
	case "dev", "prod":
	default:
		errs = append(errs, fmt.Errorf("invalid env %q (allowed: dev, prod)", c.Env))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log_level %q (allowed: debug, info, warn, error)", c.LogLevel))
	}
	switch c.DBDriver {
	case "mysql":
	case "sqlite":
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("sqlite_path required for db_driver=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid db_driver %q (allowed: mysql, sqlite)", c.DBDriver))
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("listen_addr must not be empty"))
	}
	if c.PollIntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval_ms must be > 0, got %d", c.PollIntervalMS))
	}
	if c.DBQueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("db_query_timeout must be > 0, got %s", c.DBQueryTimeout))
	}
	loc, err := c.Location()
	if err != nil {
		errs = append(errs, err)
	}
	if earliest, err := c.Earliest(); err != nil {
		errs = append(errs, err)
	} else if loc != nil && earliest.After(time.Now().In(loc)) {
		errs = append(errs, fmt.Errorf("earliest_date %s lies in the future", c.EarliestDate))
	}
	if _, err := c.EmptyCategoryPolicy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves the display timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Earliest parses EarliestDate as a calendar date.
func (c Config) Earliest() (time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(c.EarliestDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid earliest_date %q (expected YYYY-MM-DD): %w", c.EarliestDate, err)
	}
	return d, nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c Config) EmptyCategoryPolicy() (registry.EmptyCategoryPolicy, error) {
	return registry.ParseEmptyCategoryPolicy(c.EmptyCategories)
}

// MySQLDSN returns a mysql driver DSN with safe defaults for TCP access.
// Timestamps are stored in UTC and parsed into time.Time.
func (c Config) MySQLDSN() string {
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("loc", "UTC")
	params.Set("timeout", c.DBConnTimeout.String())
	params.Set("readTimeout", c.DBQueryTimeout.String())
	params.Set("writeTimeout", c.DBQueryTimeout.String())
	params.Set("charset", "utf8mb4")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, params.Encode())
}
