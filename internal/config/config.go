package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	LogLevel   string

	DatabaseURL string

	JWTSecret  []byte
	AccessTTL  string
	RefreshTTL string

	ESURL      string
	ESUser     string
	ESPassword string

	KafkaBrokers []string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	FulfillmentURL    string
	FulfillmentAPIKey string

	AuthRatePerMinute int
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment", err)
	}

	cfg := &Config{
		ServerPort: EnvDefault("SERVER_PORT", "8080"),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		AccessTTL:  EnvDefault("ACCESS_TTL", "15m"),
		RefreshTTL: EnvDefault("REFRESH_TTL", "7d"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    EnvDefault("S3_REGION", "us-east-1"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),

		FulfillmentURL:    os.Getenv("FULFILLMENT_URL"),
		FulfillmentAPIKey: os.Getenv("FULFILLMENT_API_KEY"),

		AuthRatePerMinute: EnvIntDefault("AUTH_RATE_PER_MINUTE", 30),
	}

	return cfg, nil
}
