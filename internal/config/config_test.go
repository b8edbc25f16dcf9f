package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")

	cfg, err := NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 2, cfg.ShutdownTimeoutInSeconds)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.CreateSchema)
	assert.Equal(t, "warn", cfg.Database.LogLevel)
	assert.Equal(t, 12*time.Hour, cfg.Session.Lifetime)
	assert.False(t, cfg.Session.SecureCookies)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
	assert.Equal(t, "0 3 * * *", cfg.Audit.CleanupSchedule)
	assert.False(t, cfg.Demo.Enabled)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_NAME", "books")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("SESSION_LIFETIME", "30m")

	cfg, err := NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, DefaultPostgresPort, cfg.Database.Port)
	assert.Equal(t, "books", cfg.Database.Name)
	assert.True(t, cfg.Demo.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Session.Lifetime)
}

func TestNewConfig_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "librarian.yaml")
	content := "database_driver: mysql\ndatabase_host: db.internal\ndatabase_user: librarian\naudit_retention_days: 7\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Run("explicit path", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")

		cfg, err := NewConfig(path)
		require.NoError(t, err)
		assert.Equal(t, DriverMySQL, cfg.Database.Driver)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, DefaultMySQLPort, cfg.Database.Port)
		assert.Equal(t, 7, cfg.Audit.RetentionDays)
	})

	t.Run("path from environment", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, path)

		cfg, err := NewConfig("")
		require.NoError(t, err)
		assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")
		t.Setenv("DATABASE_HOST", "override")

		cfg, err := NewConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "override", cfg.Database.Host)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, "")

		_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestNewConfig_UnsupportedDriver(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := NewConfig("")
	assert.ErrorContains(t, err, "unsupported DATABASE_DRIVER")
}

func TestDatabase_Validate(t *testing.T) {
	d := Database{Driver: DriverSQLite}
	assert.Error(t, d.Validate(), "sqlite needs a path")

	d = Database{Driver: DriverSQLite, Path: "x.db", MaxOpenConns: 0}
	require.NoError(t, d.Validate())
	assert.Equal(t, 1, d.MaxOpenConns)

	d = Database{Driver: DriverPostgres, Port: 6543}
	require.NoError(t, d.Validate())
	assert.Equal(t, 6543, d.Port)
}

func TestDatabase_DSN(t *testing.T) {
	tests := []struct {
		name string
		db   Database
		want string
	}{
		{
			name: "sqlite file",
			db:   Database{Driver: DriverSQLite, Path: "./library.db"},
			want: "file:./library.db?_foreign_keys=on&_busy_timeout=5000",
		},
		{
			name: "sqlite with parameters",
			db:   Database{Driver: DriverSQLite, Path: "file:test?mode=memory&cache=shared"},
			want: "file:test?mode=memory&cache=shared&_foreign_keys=on",
		},
		{
			name: "postgres",
			db:   Database{Driver: DriverPostgres, Host: "localhost", Port: 5432, Name: "library", User: "u", Password: "p", SSLMode: "disable"},
			want: "host=localhost user=u password=p dbname=library port=5432 sslmode=disable TimeZone=UTC",
		},
		{
			name: "mysql",
			db:   Database{Driver: DriverMySQL, Host: "localhost", Port: 3306, Name: "library", User: "u", Password: "p"},
			want: "u:p@tcp(localhost:3306)/library?charset=utf8mb4&parseTime=True&loc=UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.db.DSN())
		})
	}
}
