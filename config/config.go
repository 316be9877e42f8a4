package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	MongoURI string
	MongoDB  string

	JWTSecret string

	ChapaBaseURL       string
	ChapaSecretKey     string
	ChapaWebhookSecret string

	ArifPayBaseURL   string
	ArifPayAPIKey    string
	ArifPayPublicKey string // PEM-encoded RSA public key

	CallbackBaseURL string
	ReturnURL       string
	CancelURL       string

	GatewayTimeout     time.Duration
	GatewayMaxRetries  int
	GatewayBackoffBase time.Duration

	KafkaBrokers       string
	PaymentEventsTopic string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8086"),
		Environment: getEnv("APP_ENV", "development"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "afrimart"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ChapaBaseURL:       getEnv("CHAPA_BASE_URL", "https://api.chapa.co"),
		ChapaSecretKey:     os.Getenv("CHAPA_SECRET_KEY"),
		ChapaWebhookSecret: os.Getenv("CHAPA_WEBHOOK_SECRET"),

		ArifPayBaseURL:   getEnv("ARIFPAY_BASE_URL", "https://gateway.arifpay.net/api"),
		ArifPayAPIKey:    os.Getenv("ARIFPAY_API_KEY"),
		ArifPayPublicKey: os.Getenv("ARIFPAY_PUBLIC_KEY"),

		CallbackBaseURL: os.Getenv("CALLBACK_BASE_URL"),
		ReturnURL:       getEnv("PAYMENT_RETURN_URL", "http://localhost:3000/payment/return"),
		CancelURL:       getEnv("PAYMENT_CANCEL_URL", "http://localhost:3000/payment/cancel"),

		GatewayTimeout:     time.Duration(getEnvInt("GATEWAY_TIMEOUT_SECONDS", 15)) * time.Second,
		GatewayMaxRetries:  getEnvInt("GATEWAY_MAX_RETRIES", 3),
		GatewayBackoffBase: time.Duration(getEnvInt("GATEWAY_BACKOFF_BASE_MS", 200)) * time.Millisecond,

		KafkaBrokers:       getEnv("KAFKA_BROKERS", "localhost:9092"),
		PaymentEventsTopic: getEnv("PAYMENT_EVENTS_TOPIC", "payment-events"),
	}

	if cfg.JWTSecret == "" || cfg.ChapaSecretKey == "" || cfg.CallbackBaseURL == "" {
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
