package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Env struct {
	AppAddr   string
	GinMode   string
	LogLevel  string
	LogFormat string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxOpenConns int
	StoreTimeout   time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	GatewayBaseURL       string
	GatewayKeyID         string
	GatewayKeySecret     string
	GatewayWebhookSecret string
	GatewayTimeout       time.Duration
	GatewayCurrency      string

	TripCacheTTL time.Duration
	RedisURL     string
	KafkaBrokers []string

	CORSAllowedOrigins []string

	MinPaymentPercent         float64
	PaymentDeadlineDays       int
	PlatformCommissionPercent float64
	PayoutFirstPercent        float64
	PayoutSettlementDays      int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "tripmarket")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("GATEWAY_BASE_URL", "https://api.razorpay.com/v1")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("GATEWAY_CURRENCY", "INR")
	v.SetDefault("TRIP_CACHE_TTL", "5m")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("MIN_PAYMENT_PERCENT", 30)
	v.SetDefault("PAYMENT_DEADLINE_DAYS", 7)
	v.SetDefault("PLATFORM_COMMISSION_PERCENT", 10)
	v.SetDefault("PAYOUT_FIRST_PERCENT", 50)
	v.SetDefault("PAYOUT_SETTLEMENT_DAYS", 7)
}

// LoadEnv reads configuration from the environment and, when present, an env file.
func LoadEnv(envFile string) (Env, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if strings.TrimSpace(envFile) != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return Env{}, err
		}
	}

	return Env{
		AppAddr:   strings.TrimSpace(v.GetString("APP_ADDR")),
		GinMode:   strings.TrimSpace(v.GetString("GIN_MODE")),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		StoreTimeout:   v.GetDuration("STORE_TIMEOUT"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		GatewayBaseURL:       v.GetString("GATEWAY_BASE_URL"),
		GatewayKeyID:         v.GetString("GATEWAY_KEY_ID"),
		GatewayKeySecret:     v.GetString("GATEWAY_KEY_SECRET"),
		GatewayWebhookSecret: v.GetString("GATEWAY_WEBHOOK_SECRET"),
		GatewayTimeout:       v.GetDuration("GATEWAY_TIMEOUT"),
		GatewayCurrency:      strings.ToUpper(v.GetString("GATEWAY_CURRENCY")),

		TripCacheTTL: v.GetDuration("TRIP_CACHE_TTL"),
		RedisURL:     strings.TrimSpace(v.GetString("REDIS_URL")),
		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),

		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),

		MinPaymentPercent:         v.GetFloat64("MIN_PAYMENT_PERCENT"),
		PaymentDeadlineDays:       v.GetInt("PAYMENT_DEADLINE_DAYS"),
		PlatformCommissionPercent: v.GetFloat64("PLATFORM_COMMISSION_PERCENT"),
		PayoutFirstPercent:        v.GetFloat64("PAYOUT_FIRST_PERCENT"),
		PayoutSettlementDays:      v.GetInt("PAYOUT_SETTLEMENT_DAYS"),
	}, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
