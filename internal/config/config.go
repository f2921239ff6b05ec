// Package config loads process configuration from the environment.
//
// Precedence for every key: real environment > .env.local > .env > default.
// The listen port additionally accepts a positional command-line argument,
// which wins over PORT when it parses as a number.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	DBDriver          string        `mapstructure:"db_driver" validate:"oneof=postgres sqlite"`
	DBHost            string        `mapstructure:"db_host" validate:"required"`
	DBPort            int           `mapstructure:"db_port" validate:"min=1,max=65535"`
	DBName            string        `mapstructure:"db_name" validate:"required"`
	DBUser            string        `mapstructure:"db_user"`
	DBPassword        string        `mapstructure:"db_password"`
	DBConnectionLimit int           `mapstructure:"db_connection_limit" validate:"min=1"`
	DBAcquireTimeout  time.Duration `mapstructure:"db_acquire_timeout" validate:"min=0"`
	DBProbeTimeout    time.Duration `mapstructure:"db_probe_timeout" validate:"gt=0"`
	DBTimezone        string        `mapstructure:"db_timezone" validate:"required"`

	APIKey           string        `mapstructure:"api_key"`
	ReviewAPIURL     string        `mapstructure:"review_api_url" validate:"required,url"`
	ReviewAPIRPS     float64       `mapstructure:"review_api_rps" validate:"min=0"`
	ReviewAPITimeout time.Duration `mapstructure:"review_api_timeout" validate:"min=0"`

	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"min=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"min=1"`
	EnableHSTS     bool    `mapstructure:"enable_hsts"`
	TrustProxy     bool    `mapstructure:"trust_proxy"`

	// Location is DBTimezone resolved by Load.
	Location *time.Location `mapstructure:"-" validate:"-"`
}

var defaults = map[string]any{
	"port":                3000,
	"db_driver":           DriverPostgres,
	"db_host":             "localhost",
	"db_port":             5432,
	"db_name":             "goodreads",
	"db_user":             "",
	"db_password":         "",
	"db_connection_limit": 4,
	"db_acquire_timeout":  10 * time.Second,
	"db_probe_timeout":    5 * time.Second,
	"db_timezone":         "+08:00",
	"api_key":             "",
	"review_api_url":      "https://api.nytimes.com/svc/books/v3/reviews.json",
	"review_api_rps":      0.0,
	"review_api_timeout":  time.Duration(0),
	"log_format":          "text",
	"log_level":           "info",
	"rate_limit_rps":      0.0,
	"rate_limit_burst":    20,
	"enable_hsts":         false,
	"trust_proxy":         false,
}

var validate = validator.New()

// LoadEnvFiles reads .env and .env.local without overriding variables that
// are already set by the runtime.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load builds a validated Config. args are the positional command-line
// arguments; args[0], when numeric, is the listen port.
func Load(args []string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if len(args) > 0 {
		if port, err := strconv.Atoi(args[0]); err == nil && port != 0 {
			cfg.Port = port
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	loc, err := ParseTimezone(cfg.DBTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.Location = loc

	return &cfg, nil
}

// ParseTimezone accepts a fixed offset such as "+08:00" or an IANA name.
func ParseTimezone(tz string) (*time.Location, error) {
	if len(tz) == 6 && (tz[0] == '+' || tz[0] == '-') && tz[3] == ':' {
		hours, herr := strconv.Atoi(tz[1:3])
		minutes, merr := strconv.Atoi(tz[4:6])
		if herr != nil || merr != nil || hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("bad timezone offset %q", tz)
		}
		seconds := hours*3600 + minutes*60
		if tz[0] == '-' {
			seconds = -seconds
		}
		return time.FixedZone(tz, seconds), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("bad timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// PostgresDSN renders the connection URL for pgx.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	switch {
	case c.DBUser != "" && c.DBPassword != "":
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	case c.DBUser != "":
		u.User = url.User(c.DBUser)
	}
	return u.String()
}

// SQLiteDSN renders the modernc sqlite data source for DB_NAME.
func (c *Config) SQLiteDSN() string {
	name := c.DBName
	if !strings.HasPrefix(name, "file:") {
		name = "file:" + name
	}
	return name + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}
