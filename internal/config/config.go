package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // postgresのDSNか sqlite://path
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret  string        // JWT署名シークレット
	TokenTTL   time.Duration // access token lifetime
	BcryptCost int

	GoEnv       string   // development/production
	FrontendURL string   // payment callback base
	CORSOrigins []string // allowed origins

	RabbitMQURL    string
	EventsExchange string
	OutboxPoll     time.Duration

	RedisURL        string
	ProductCacheTTL time.Duration

	PaystackSecretKey string
}

const devJWTSecret = "dev_secret_change_me"

// 本番ではエラー詳細を返さない
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.GoEnv, "production")
}

// .envがあれば読み、そのあと環境変数を読む
func Load() (Config, error) {
	//.envは無くてもよい
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GO_ENV", "development")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "naijashop")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("JWT_EXPIRE_DAYS", "7")
	v.SetDefault("BCRYPT_COST", "12")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("EVENTS_EXCHANGE", "shop.events")
	v.SetDefault("OUTBOX_POLL_SECONDS", "2")
	v.SetDefault("PRODUCT_CACHE_TTL_SECONDS", "60")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	pgPort, err := mustAtoi(v, "POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}
	ttlDays, err := mustAtoi(v, "JWT_EXPIRE_DAYS")
	if err != nil {
		return Config{}, err
	}
	cost, err := mustAtoi(v, "BCRYPT_COST")
	if err != nil {
		return Config{}, err
	}
	pollSec, err := mustAtoi(v, "OUTBOX_POLL_SECONDS")
	if err != nil {
		return Config{}, err
	}
	cacheSec, err := mustAtoi(v, "PRODUCT_CACHE_TTL_SECONDS")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: strings.TrimPrefix(v.GetString("PORT"), ":"),

		DatabaseURL:      v.GetString("DATABASE_URL"),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:       v.GetString("POSTGRES_DB"),
		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  v.GetString("POSTGRES_SSLMODE"),

		JWTSecret:  v.GetString("JWT_SECRET"),
		TokenTTL:   time.Duration(ttlDays) * 24 * time.Hour,
		BcryptCost: cost,

		GoEnv:       v.GetString("GO_ENV"),
		FrontendURL: v.GetString("FRONTEND_URL"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		EventsExchange: v.GetString("EVENTS_EXCHANGE"),
		OutboxPoll:     time.Duration(pollSec) * time.Second,

		RedisURL:        v.GetString("REDIS_URL"),
		ProductCacheTTL: time.Duration(cacheSec) * time.Second,

		PaystackSecretKey: v.GetString("PAYSTACK_SECRET_KEY"),
	}

	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.FrontendURL}
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if ttlDays <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRE_DAYS must be positive")
	}
	if cfg.OutboxPoll <= 0 {
		return Config{}, fmt.Errorf("OUTBOX_POLL_SECONDS must be positive")
	}

	return cfg, nil
}

// echoの待ち受けアドレス
func (c Config) Addr() string {
	return ":" + c.Port
}

func mustAtoi(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
