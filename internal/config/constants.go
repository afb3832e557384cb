package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	// EnvDSN overrides database.dsn when set.
	EnvDSN = "BLOGICUM_DSN"

	defaultPort             = 8000
	defaultEnv              = "development"
	defaultTimezone         = "UTC"
	defaultDBDriver         = DriverMySQL
	defaultDBHost           = "127.0.0.1"
	defaultDBPort           = 3306
	defaultDBUser           = "root"
	defaultDBName           = "blogicum"
	defaultDBCharset        = "utf8mb4"
	defaultDBLoc            = "UTC"
	defaultSQLitePath       = "blogicum.sqlite3"
	defaultSessionTTLHours  = 30 * 24
	defaultItemsPerPage     = 10
	defaultLoginURL         = "/auth/login/"
	defaultStorageDriver    = StorageLocal
	defaultMaxImageMB       = 5
	defaultMediaDir         = "media"
	defaultLogsDir          = "logs"
	defaultRateLimitMax     = 50
	defaultRateLimitSeconds = 1
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	StorageLocal = "local"
	StorageS3    = "s3"
)
