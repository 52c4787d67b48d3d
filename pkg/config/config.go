package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	defaultJWTSecret = "your-secret-key-change-in-production"
)

type Config struct {
	// Server
	ServerPort       string
	Env              string
	CORSAllowOrigins []string
	RateLimitPerMin  int

	// Logging
	LogLevel  string
	LogFormat string

	// MongoDB
	MongoURI    string
	MongoDBName string

	// Auth
	AuthProvider               string
	SkipAuth                   bool
	JWTSecret                  string
	FirebaseServiceAccount     string
	FirebaseServiceAccountPath string

	// Paystack
	PaystackSecretKey   string
	PaystackBaseURL     string
	PaystackCallbackURL string

	// Redis
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ
	RabbitMQEnabled  bool
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3UseSSL           string
	S3BucketName       string
	UploadDir          string

	// Image garbage collection
	GCSchedule    string
	GCGracePeriod time.Duration
	GCBatchSize   int
	JanitorPort   string
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	config := &Config{
		ServerPort:       getEnv("PORT", "5000"),
		Env:              getEnv("NODE_ENV", EnvDevelopment),
		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 100),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "cognition_berries"),

		AuthProvider:               getEnv("AUTH_PROVIDER", "firebase"),
		SkipAuth:                   getEnvBool("SKIP_AUTH", false),
		JWTSecret:                  getEnv("JWT_SECRET", defaultJWTSecret),
		FirebaseServiceAccount:     getEnv("FIREBASE_SERVICE_ACCOUNT", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		PaystackSecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaystackCallbackURL: getEnv("PAYSTACK_CALLBACK_URL", ""),

		RedisEnabled:  getEnvBool("REDIS_ENABLED", true),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RabbitMQEnabled:  getEnvBool("RABBITMQ_ENABLED", false),
		RabbitMQHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpoint:        getEnv("AWS_ENDPOINT", ""),
		S3UseSSL:           getEnv("S3_USE_SSL", "true"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", ""),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),

		GCSchedule:    getEnv("GC_SCHEDULE", "0 */6 * * *"),
		GCGracePeriod: getEnvDuration("GC_GRACE_PERIOD", time.Hour),
		GCBatchSize:   getEnvInt("GC_BATCH_SIZE", 500),
		JanitorPort:   getEnv("JANITOR_PORT", "5001"),
	}

	if config.LogFormat == "" {
		config.LogFormat = "console"
		if config.IsProduction() {
			config.LogFormat = "json"
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings that are only acceptable outside production.
func (c *Config) Validate() error {
	if c.AuthProvider != "firebase" && c.AuthProvider != "local" {
		return fmt.Errorf("AUTH_PROVIDER must be firebase or local, got %q", c.AuthProvider)
	}
	if !c.IsProduction() {
		return nil
	}
	if c.SkipAuth {
		return fmt.Errorf("SKIP_AUTH cannot be enabled in production")
	}
	if c.PaystackSecretKey == "" {
		return fmt.Errorf("PAYSTACK_SECRET_KEY is required in production")
	}
	if c.AuthProvider == "local" && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set when AUTH_PROVIDER=local in production")
	}
	return nil
}

func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// S3Enabled reports whether avatar uploads go to object storage instead of UploadDir.
func (c *Config) S3Enabled() bool {
	return c.S3BucketName != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
}

func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RabbitMQUser, c.RabbitMQPassword, c.RabbitMQHost, c.RabbitMQPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
