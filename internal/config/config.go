package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigFileEnv names the environment variable pointing at an optional config file.
const ConfigFileEnv = "LIBRARIAN_CONFIG"

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Session
		Audit
		Demo
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver       string
		Path         string // SQLite file
		Host         string
		Port         int
		Name         string
		User         string
		Password     string
		SSLMode      string
		MaxOpenConns int
		CreateSchema bool   // Create missing tables on startup
		LogLevel     string // silent, error, warn, info
	}
	UI struct {
		TemplatesPath string // Empty uses the embedded templates
	}
	Session struct {
		Secret        string // Hex or raw; generated when empty
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
	}
	Audit struct {
		RetentionDays   int
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Demo struct {
		Enabled bool // Block every write operation
	}
)

// NewConfig reads configuration from the environment, an optional .env file
// in the working directory and an optional config file. configFile takes
// precedence over LIBRARIAN_CONFIG.
func NewConfig(configFile string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARNING: could not load .env: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", 0) // driver default
	v.SetDefault("database_name", "library")
	v.SetDefault("database_user", "")
	v.SetDefault("database_password", "")
	v.SetDefault("database_sslmode", "disable")
	v.SetDefault("database_max_open_conns", 1)
	v.SetDefault("database_create_schema", true)
	v.SetDefault("database_log_level", "warn")

	v.SetDefault("templates_path", "")

	v.SetDefault("session_secret", "")
	v.SetDefault("session_lifetime", "12h")
	v.SetDefault("secure_cookies", false)

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	v.SetDefault("demo_mode", false)

	if configFile == "" {
		configFile = os.Getenv(ConfigFileEnv)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		log.Printf("Loaded config file %s", configFile)
	}

	cfg := &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:       strings.ToLower(v.GetString("DATABASE_DRIVER")),
			Path:         v.GetString("DATABASE_PATH"),
			Host:         v.GetString("DATABASE_HOST"),
			Port:         v.GetInt("DATABASE_PORT"),
			Name:         v.GetString("DATABASE_NAME"),
			User:         v.GetString("DATABASE_USER"),
			Password:     v.GetString("DATABASE_PASSWORD"),
			SSLMode:      v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			CreateSchema: v.GetBool("DATABASE_CREATE_SCHEMA"),
			LogLevel:     strings.ToLower(v.GetString("DATABASE_LOG_LEVEL")),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
		},
		Session: Session{
			Secret:        v.GetString("SESSION_SECRET"),
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the driver name and fills in the driver's default port.
func (d *Database) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return fmt.Errorf("DATABASE_PATH is required for the %s driver", d.Driver)
		}
	case DriverPostgres:
		if d.Port == 0 {
			d.Port = DefaultPostgresPort
		}
	case DriverMySQL:
		if d.Port == 0 {
			d.Port = DefaultMySQLPort
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want %s, %s or %s)", d.Driver, DriverSQLite, DriverPostgres, DriverMySQL)
	}
	if d.MaxOpenConns < 1 {
		d.MaxOpenConns = 1
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (d Database) DSN() string {
	switch d.Driver {
	case DriverPostgres:
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
		)
	case DriverMySQL:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	default:
		return SQLiteDSN(d.Path)
	}
}

// SQLiteDSN turns a file path into a DSN with foreign keys enforced.
// Paths that already carry query parameters get the pragma appended.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}
