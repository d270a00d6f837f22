package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	S3         S3Config
	Yandex     YandexConfig
	Cloudinary CloudinaryConfig
	Sync       SyncConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

// DatabaseConfig holds the paths of the two SQLite database files.
// Both files are exclusively owned by this process; the bucket copy under
// databases/<name>.db is the cold backup, not a shared live resource.
type DatabaseConfig struct {
	UsersPath    string // users.db (token balances + orders)
	PersonasPath string // personas.db
}

// StorageConfig selects the photo backend once at startup.
// Type ∈ {local, cloudinary, s3, yandex}
type StorageConfig struct {
	Type     string
	LocalDir string // base directory for the local backend
}

type S3Config struct {
	Endpoint   string // s3.amazonaws.com hoặc custom endpoint
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	UseSSL     bool
	PublicRead bool // bucket has a public-read policy => photo URLs resolve
}

type YandexConfig struct {
	Endpoint  string // storage.yandexcloud.net
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// SyncConfig drives database lifecycle sync. The bucket and credentials are
// reused from the Yandex (preferred) or S3 credential set; when neither is
// configured sync is disabled and local files are authoritative.
type SyncConfig struct {
	Interval    time.Duration // periodic push, 0 disables the ticker
	PushTimeout time.Duration // bound on the shutdown upload
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Personabot API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			UsersPath:    getEnv("USERS_DB_PATH", "data/users.db"),
			PersonasPath: getEnv("PERSONAS_DB_PATH", "data/personas.db"),
		},
		Storage: StorageConfig{
			Type:     getEnv("STORAGE_TYPE", "local"),
			LocalDir: getEnv("LOCAL_STORAGE_DIR", "data/users"),
		},
		S3: S3Config{
			Endpoint:   getEnv("AWS_S3_ENDPOINT", "s3.amazonaws.com"),
			AccessKey:  getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:     getEnv("AWS_S3_BUCKET", ""),
			Region:     getEnv("AWS_REGION", "us-east-1"),
			UseSSL:     getEnvBool("AWS_S3_USE_SSL", true),
			PublicRead: getEnvBool("AWS_S3_PUBLIC_READ", true),
		},
		Yandex: YandexConfig{
			Endpoint:  getEnv("YANDEX_ENDPOINT", "storage.yandexcloud.net"),
			AccessKey: getEnv("YANDEX_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("YANDEX_SECRET_ACCESS_KEY", ""),
			Bucket:    getEnv("YANDEX_BUCKET", ""),
			Region:    getEnv("YANDEX_REGION", "ru-central1"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		Sync: SyncConfig{
			Interval:    getEnvDuration("DB_SYNC_INTERVAL", 0),
			PushTimeout: getEnvDuration("DB_SYNC_PUSH_TIMEOUT", 30*time.Second),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "local":
		// no credentials needed
	case "s3":
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" || c.S3.Bucket == "" {
			return fmt.Errorf("STORAGE_TYPE=s3 requires AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_S3_BUCKET")
		}
	case "yandex":
		if c.Yandex.AccessKey == "" || c.Yandex.SecretKey == "" || c.Yandex.Bucket == "" {
			return fmt.Errorf("STORAGE_TYPE=yandex requires YANDEX_ACCESS_KEY_ID, YANDEX_SECRET_ACCESS_KEY and YANDEX_BUCKET")
		}
	case "cloudinary":
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return fmt.Errorf("STORAGE_TYPE=cloudinary requires CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q (expected local, cloudinary, s3 or yandex)", c.Storage.Type)
	}

	return nil
}

// SyncCredentials returns the bucket credential set used for database
// lifecycle sync: Yandex if configured, otherwise S3, otherwise nothing.
// The database bucket is always the same bucket the photo backends use.
func (c *Config) SyncCredentials() (endpoint, accessKey, secretKey, bucket, region string, useSSL, ok bool) {
	if c.Yandex.AccessKey != "" && c.Yandex.SecretKey != "" && c.Yandex.Bucket != "" {
		return c.Yandex.Endpoint, c.Yandex.AccessKey, c.Yandex.SecretKey, c.Yandex.Bucket, c.Yandex.Region, true, true
	}
	if c.S3.AccessKey != "" && c.S3.SecretKey != "" && c.S3.Bucket != "" {
		return c.S3.Endpoint, c.S3.AccessKey, c.S3.SecretKey, c.S3.Bucket, c.S3.Region, c.S3.UseSSL, true
	}
	return "", "", "", "", "", false, false
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
