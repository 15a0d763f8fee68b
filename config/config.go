package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port                string
	Env                 string
	AppURL              string // storefront base URL for checkout redirects
	MongoURL            string
	MongoDB             string
	RedisURL            string
	StripeSecretKey     string
	StripeWebhookSecret string
	JWTSecret           string
	S3Bucket            string // bucket for product image uploads
	OrderTopicARN       string // SNS topic ARN for order events
	EventBus            string // "sns" or "kafka"
	KafkaBrokers        []string
	KafkaTopic          string
	CartTTLHours        int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("APP_ENV", "development"),
		AppURL:              getEnv("APP_URL", "http://localhost:3000"),
		MongoURL:            os.Getenv("MONGO_URL"),
		MongoDB:             getEnv("MONGO_DB", "storefront"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		S3Bucket:            os.Getenv("S3_BUCKET"),
		OrderTopicARN:       getEnv("ORDER_SNS_TOPIC_ARN", "arn:aws:sns:eu-west-2:000000000000:order-events"),
		EventBus:            getEnv("EVENT_BUS", "sns"),
		KafkaBrokers:        strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaTopic:          getEnv("KAFKA_ORDER_TOPIC", "order-events"),
		CartTTLHours:        getEnvInt("CART_TTL_HOURS", 72),
	}

	if cfg.MongoURL == "" || cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" || cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
