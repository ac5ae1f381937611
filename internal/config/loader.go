package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/example/gym-dashboard/internal/persistence"
)

// Config captures environment driven configuration values for the dashboard service.
type Config struct {
	HTTPPort       int
	Database       persistence.ConnectionConfig
	QueryTimeout   time.Duration
	AutoMigrate    bool
	AllowedOrigins []string
	LogLevel       string
}

// Load parses GYM_* configuration values from the current process environment.
//
// Defaults are applied for optional fields; missing required values and invalid
// values are collected and reported together.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GYM")
	v.AutomaticEnv()

	v.SetDefault("http_port", 8080)
	v.SetDefault("db_driver", string(persistence.DriverSQLite))
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_file_path", "gym.db")
	v.SetDefault("db_max_open_conns", 4)
	v.SetDefault("query_timeout", "5s")
	v.SetDefault("auto_migrate", false)
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("log_level", "info")

	cfg := Config{}
	missing := make([]string, 0, 3)
	invalid := make([]string, 0, 4)

	if port := v.GetInt("http_port"); port <= 0 {
		invalid = append(invalid, "GYM_HTTP_PORT")
	} else {
		cfg.HTTPPort = port
	}

	driver, err := persistence.ParseDriver(v.GetString("db_driver"))
	if err != nil {
		invalid = append(invalid, "GYM_DB_DRIVER")
	}
	cfg.Database = persistence.ConnectionConfig{
		Driver:       driver,
		Host:         strings.TrimSpace(v.GetString("db_host")),
		User:         strings.TrimSpace(v.GetString("db_user")),
		Password:     v.GetString("db_password"),
		DatabaseName: strings.TrimSpace(v.GetString("db_name")),
		SSLMode:      strings.TrimSpace(v.GetString("db_sslmode")),
		FilePath:     strings.TrimSpace(v.GetString("db_file_path")),
	}

	switch driver {
	case persistence.DriverPostgres:
		if cfg.Database.Host == "" {
			missing = append(missing, "GYM_DB_HOST")
		}
		if cfg.Database.User == "" {
			missing = append(missing, "GYM_DB_USER")
		}
		if cfg.Database.DatabaseName == "" {
			missing = append(missing, "GYM_DB_NAME")
		}
		if port := v.GetInt("db_port"); port <= 0 {
			invalid = append(invalid, "GYM_DB_PORT")
		} else {
			cfg.Database.Port = port
		}
	case persistence.DriverSQLite:
		if cfg.Database.FilePath == "" {
			missing = append(missing, "GYM_DB_FILE_PATH")
		}
	}

	if conns := v.GetInt("db_max_open_conns"); conns <= 0 {
		invalid = append(invalid, "GYM_DB_MAX_OPEN_CONNS")
	} else {
		cfg.Database.MaxOpenConns = conns
	}

	if timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString("query_timeout"))); err != nil || timeout <= 0 {
		invalid = append(invalid, "GYM_QUERY_TIMEOUT")
	} else {
		cfg.QueryTimeout = timeout
	}

	cfg.AutoMigrate = v.GetBool("auto_migrate")
	cfg.AllowedOrigins = splitList(v.GetString("allowed_origins"))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(v.GetString("log_level")))

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
