package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// Mongo / object store Configuration
	Mongo MongoConfig `json:"mongo"`

	// Redis cache Configuration (optional)
	Redis RedisConfig `json:"redis"`

	// NATS event publishing Configuration (optional)
	NATS NATSConfig `json:"nats"`

	// Upload broker Configuration
	Upload UploadConfig `json:"upload"`

	// Notification Configuration
	Notification NotificationConfig `json:"notification"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	Environment  string `json:"environment"` // development, staging, production

	// Public base URL objects are served from, e.g. http://localhost:8080
	MediaBaseURL string `json:"media_base_url"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// MongoConfig contains the GridFS object store configuration
type MongoConfig struct {
	URI        string `json:"uri"`
	Database   string `json:"database"`
	BucketName string `json:"bucket_name"`
}

// RedisConfig contains the published-portfolio cache configuration
type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	TTL      int    `json:"ttl"` // seconds
	Enabled  bool   `json:"enabled"`
}

// NATSConfig contains event publishing configuration
type NATSConfig struct {
	Host    string `json:"host"`
	Port    string `json:"port"`
	Subject string `json:"subject"` // subject prefix for notification events
	Enabled bool   `json:"enabled"`
}

// UploadConfig contains upload broker limits and session lifetime
type UploadConfig struct {
	MaxImageBytes   int64 `json:"max_image_bytes"`
	GrantTTLMinutes int   `json:"grant_ttl_minutes"`
	CleanupInterval int   `json:"cleanup_interval"` // minutes between expiry sweeps
}

// NotificationConfig contains fan-out worker configuration
type NotificationConfig struct {
	Workers           int `json:"workers"`             // Number of worker goroutines
	ChannelBufferSize int `json:"channel_buffer_size"` // Channel buffer size
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("SERVER_PORT", "8080"),
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvIntOrDefault("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 30),
			Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
			MediaBaseURL: getEnvOrDefault("MEDIA_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "127.0.0.1"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "artfolio_user"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("DB_NAME", "artfolio_db"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		Mongo: MongoConfig{
			URI:        getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Database:   getEnvOrDefault("MONGO_DB", "artfolio_media"),
			BucketName: getEnvOrDefault("MONGO_BUCKET", "objects"),
		},
		Redis: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "127.0.0.1"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvIntOrDefault("REDIS_DB", 0),
			TTL:      getEnvIntOrDefault("REDIS_TTL", 300),
			Enabled:  getEnvOrDefault("REDIS_ENABLED", "false") == "true",
		},
		NATS: NATSConfig{
			Host:    getEnvOrDefault("NATS_HOST", "127.0.0.1"),
			Port:    getEnvOrDefault("NATS_PORT", "4222"),
			Subject: getEnvOrDefault("NATS_SUBJECT", "artfolio.notifications"),
			Enabled: getEnvOrDefault("NATS_ENABLED", "false") == "true",
		},
		Upload: UploadConfig{
			MaxImageBytes:   int64(getEnvIntOrDefault("UPLOAD_MAX_IMAGE_MB", 10)) * 1024 * 1024,
			GrantTTLMinutes: getEnvIntOrDefault("UPLOAD_GRANT_TTL_MINUTES", 15),
			CleanupInterval: getEnvIntOrDefault("UPLOAD_CLEANUP_MINUTES", 10),
		},
		Notification: NotificationConfig{
			Workers:           getEnvIntOrDefault("NOTIF_WORKERS", 5),
			ChannelBufferSize: getEnvIntOrDefault("NOTIF_BUFFER", 1000),
		},
	}
}

// DSN builds the MySQL connection string from the database config
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DatabaseName,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
