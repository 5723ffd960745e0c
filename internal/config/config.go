package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	Port       string
	Timezone   string
	JWTSecret  string
	JWTTTL     time.Duration
	UploadDir  string
	CORSOrigin string
	OrderRate  string // ulule limiter format, e.g. "30-M"

	DB         DBConfig
	Redis      RedisConfig
	Cloudinary CloudinaryConfig
	Log        LogConfig
}

type DBConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN returns DATABASE_URL when present, otherwise a key/value postgres DSN.
func (c DBConfig) DSN(timezone string) string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == "sqlite" {
		return c.Name
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, timezone,
	)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether event publishing to Redis is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether all Cloudinary credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type LogConfig struct {
	Mode string
	File string
}

// Load reads the .env file when present and then the process environment.
func Load() (Config, bool) {
	envLoaded := godotenv.Load() == nil


	return Config{
		Port:       getEnv("PORT", "3000"),
		Timezone:   getEnv("TIMEZONE", "UTC"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTTTL:     time.Duration(cast.ToInt(getEnv("JWT_TTL_HOURS", "24"))) * time.Hour,
		UploadDir:  getEnv("UPLOAD_DIR", "uploads"),
		CORSOrigin: getEnv("CORS_ORIGINS", "*"),
		OrderRate:  getEnv("ORDER_RATE_LIMIT", "30-M"),
		DB: DBConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "cafe_pos"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       cast.ToInt(getEnv("REDIS_DB", "0")),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			Folder:    getEnv("CLOUDINARY_FOLDER", "cafe-pos/receipts"),
		},
		Log: LogConfig{
			Mode: getEnv("LOG_MODE", "development"),
			File: os.Getenv("LOG_FILE"),
		},
	}, envLoaded
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
