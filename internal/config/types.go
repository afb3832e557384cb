package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string // "development" | "production"
	Timezone       string
	Location       *time.Location
	Database       DatabaseConfig
	RedisURL       string
	JWTSecret      string
	SessionTTL     time.Duration
	AllowedOrigins []string
	Paths          PathsConfig
	Blog           BlogConfig
	Storage        StorageConfig
	RateLimit      RateLimitConfig
}

type DatabaseConfig struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Charset  string
	Loc      string
	Params   map[string]string
	Path     string // sqlite only
}

type PathsConfig struct {
	Logs  string
	Media string
}

// BlogConfig tunes listing and access behaviour of the blog handlers.
type BlogConfig struct {
	ItemsPerPage            int
	LoginURL                string
	EnforceDetailVisibility bool
}

type StorageConfig struct {
	Driver     string
	MaxImageMB int
	S3         S3Config
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	PublicURL       string
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type rawAppConfig struct {
	Port            int               `yaml:"port"`
	Env             string            `yaml:"env"`
	Timezone        string            `yaml:"timezone"`
	DSN             string            `yaml:"dsn"`
	Database        rawDatabaseConfig `yaml:"database"`
	RedisURL        string            `yaml:"redis_url"`
	JWTSecret       string            `yaml:"jwt_secret"`
	SessionTTLHours int               `yaml:"session_ttl_hours"`
	AllowedOrigins  []string          `yaml:"allowed_origins"`
	Paths           rawPathsConfig    `yaml:"paths"`
	Blog            rawBlogConfig     `yaml:"blog"`
	Storage         rawStorageConfig  `yaml:"storage"`
	RateLimit       rawRateLimit      `yaml:"rate_limit"`
}

type rawDatabaseConfig struct {
	Driver   string            `yaml:"driver"`
	DSN      string            `yaml:"dsn"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	Charset  string            `yaml:"charset"`
	Loc      string            `yaml:"loc"`
	Params   map[string]string `yaml:"params"`
	Path     string            `yaml:"path"`
}

type rawPathsConfig struct {
	Logs  string `yaml:"logs"`
	Media string `yaml:"media"`
}

type rawBlogConfig struct {
	ItemsPerPage            int    `yaml:"items_per_page"`
	LoginURL                string `yaml:"login_url"`
	EnforceDetailVisibility *bool  `yaml:"enforce_detail_visibility"`
}

type rawStorageConfig struct {
	Driver     string      `yaml:"driver"`
	MaxImageMB int         `yaml:"max_image_mb"`
	S3         rawS3Config `yaml:"s3"`
}

type rawS3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
	PublicURL       string `yaml:"public_url"`
}

type rawRateLimit struct {
	Max           int `yaml:"max"`
	WindowSeconds int `yaml:"window_seconds"`
}
