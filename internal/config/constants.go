package config

// Default paths and ports for databases
const (
	// DefaultDatabasePath is the default path for the SQLite library database
	DefaultDatabasePath = "./library.db"

	DefaultPostgresPort = 5432
	DefaultMySQLPort    = 3306
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)
