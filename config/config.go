package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Env       string // APP_ENV: development switches the logger to console output
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Access    AccessConfig
	Messaging MessagingConfig
	AWS       AWSConfig
	Email     EmailConfig
	Seed      SeedConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// RedisConfig holds Redis connection settings. An empty Addr runs without Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AccessConfig holds the shared privileged credentials. They are hashed at start-up.
type AccessConfig struct {
	LeadAccessKey string
	RootPassword  string
}

// MessagingConfig controls the open-conversation refresh.
type MessagingConfig struct {
	PollInterval time.Duration
}

// AWSConfig holds AWS credentials and the avatar bucket. An empty bucket disables uploads.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	AvatarsBucket   string
}

// EmailConfig addresses outgoing mail.
type EmailConfig struct {
	FromAddress  string
	FromName     string
	SupportEmail string
}

// SeedConfig names the provisioned accounts.
type SeedConfig struct {
	LeadName   string
	LeadEmail  string
	AdminName  string
	AdminEmail string
	Demo       bool
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		Access: AccessConfig{
			LeadAccessKey: getEnv("LEAD_ACCESS_KEY", ""),
			RootPassword:  getEnv("ROOT_PASSWORD", ""),
		},
		Messaging: MessagingConfig{
			PollInterval: time.Duration(getEnvInt("MESSAGES_POLL_INTERVAL_MS", 2000)) * time.Millisecond,
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AvatarsBucket:   getEnv("AWS_S3_AVATARS_BUCKET", ""),
		},
		Email: EmailConfig{
			FromAddress:  getEnv("EMAIL_FROM_ADDRESS", "noreply@buildforge.io"),
			FromName:     getEnv("EMAIL_FROM_NAME", "BuildForge"),
			SupportEmail: getEnv("SUPPORT_EMAIL", "support@buildforge.io"),
		},
		Seed: SeedConfig{
			LeadName:   getEnv("LEAD_NAME", "BuildForge Lead"),
			LeadEmail:  getEnv("LEAD_EMAIL", "lead@buildforge.io"),
			AdminName:  getEnv("ROOT_NAME", "Super Admin"),
			AdminEmail: getEnv("ROOT_EMAIL", "root@buildforge.io"),
			Demo:       getEnvBool("SEED_DEMO_DATA", false),
		},
	}
	if cfg.Messaging.PollInterval <= 0 {
		cfg.Messaging.PollInterval = 2 * time.Second
	}
	return cfg, nil
}

// CORSOrigins splits the configured origin list.
func (c ServerConfig) CORSOrigins() []string {
	return splitTrim(c.CORSAllowedOrigins, ",")
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
