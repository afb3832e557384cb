package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and normalizes the YAML config file at configPath.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content into a normalized AppConfig.
func Parse(content []byte) (*AppConfig, error) {
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		if err := yaml.NewDecoder(bytes.NewReader(content)).Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
	}

	cfg := defaultAppConfig()
	applyRawAppConfig(&cfg, raw)
	if v := strings.TrimSpace(os.Getenv(EnvDSN)); v != "" {
		cfg.Database.DSN = v
	}
	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDev reports whether the process runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env == defaultEnv }

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		Timezone: defaultTimezone,
		Database: DatabaseConfig{
			Driver:  defaultDBDriver,
			Host:    defaultDBHost,
			Port:    defaultDBPort,
			User:    defaultDBUser,
			Name:    defaultDBName,
			Charset: defaultDBCharset,
			Loc:     defaultDBLoc,
			Path:    defaultSQLitePath,
		},
		SessionTTL: defaultSessionTTLHours * time.Hour,
		Paths: PathsConfig{
			Logs:  defaultLogsDir,
			Media: defaultMediaDir,
		},
		Blog: BlogConfig{
			ItemsPerPage: defaultItemsPerPage,
			LoginURL:     defaultLoginURL,
		},
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			MaxImageMB: defaultMaxImageMB,
		},
		RateLimit: RateLimitConfig{
			Max:    defaultRateLimitMax,
			Window: defaultRateLimitSeconds * time.Second,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = normalizeEnv(v)
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)
	if v := strings.TrimSpace(raw.DSN); v != "" && cfg.Database.DSN == "" {
		cfg.Database.DSN = v
	}
	cfg.RedisURL = normalizeRedisRawURL(raw.RedisURL)
	cfg.JWTSecret = strings.TrimSpace(raw.JWTSecret)
	if raw.SessionTTLHours > 0 {
		cfg.SessionTTL = time.Duration(raw.SessionTTLHours) * time.Hour
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Media); v != "" {
		cfg.Paths.Media = v
	}

	if raw.Blog.ItemsPerPage > 0 {
		cfg.Blog.ItemsPerPage = raw.Blog.ItemsPerPage
	}
	if v := strings.TrimSpace(raw.Blog.LoginURL); v != "" {
		cfg.Blog.LoginURL = v
	}
	if raw.Blog.EnforceDetailVisibility != nil {
		cfg.Blog.EnforceDetailVisibility = *raw.Blog.EnforceDetailVisibility
	}

	if v := strings.ToLower(strings.TrimSpace(raw.Storage.Driver)); v != "" {
		cfg.Storage.Driver = v
	}
	if raw.Storage.MaxImageMB > 0 {
		cfg.Storage.MaxImageMB = raw.Storage.MaxImageMB
	}
	cfg.Storage.S3 = normalizeS3Config(raw.Storage.S3)

	if raw.RateLimit.Max > 0 {
		cfg.RateLimit.Max = raw.RateLimit.Max
	}
	if raw.RateLimit.WindowSeconds > 0 {
		cfg.RateLimit.Window = time.Duration(raw.RateLimit.WindowSeconds) * time.Second
	}
}

func applyRawDatabaseConfig(cfg DatabaseConfig, raw rawDatabaseConfig) DatabaseConfig {
	if v := strings.ToLower(strings.TrimSpace(raw.Driver)); v != "" {
		cfg.Driver = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		cfg.Host = v
	}
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.User); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(raw.Password); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(raw.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Charset); v != "" {
		cfg.Charset = v
	}
	if v := strings.TrimSpace(raw.Loc); v != "" {
		cfg.Loc = v
	}
	if v := strings.TrimSpace(raw.Path); v != "" {
		cfg.Path = v
	}
	if raw.Params != nil {
		cfg.Params = copyStringMap(raw.Params)
	}
	return cfg
}

func finalize(cfg *AppConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	switch cfg.Database.Driver {
	case DriverMySQL:
		if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
			return fmt.Errorf("invalid database.port %d, expected 1-65535", cfg.Database.Port)
		}
		if cfg.Database.DSN == "" {
			cfg.Database.DSN = cfg.Database.DSNValue()
		}
	case DriverSQLite:
		if cfg.Database.DSN == "" {
			cfg.Database.DSN = cfg.Database.Path
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}
	switch cfg.Storage.Driver {
	case StorageLocal:
	case StorageS3:
		if cfg.Storage.S3.Bucket == "" || cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.bucket and storage.s3.region are required for the s3 driver")
		}
	default:
		return fmt.Errorf("unsupported storage.driver %q", cfg.Storage.Driver)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	if !strings.HasPrefix(cfg.Blog.LoginURL, "/") {
		cfg.Blog.LoginURL = "/" + cfg.Blog.LoginURL
	}
	return nil
}
