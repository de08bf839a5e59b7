package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/pricing"
)

type Config struct {
	Server   ServerConfig
	Pricing  PricingConfig
	Cart     CartConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Features FeatureFlags
	Log      LogConfig
	Version  string
}

type ServerConfig struct {
	Port            int
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// PricingConfig is the tax and shipping policy quotes are computed under.
type PricingConfig struct {
	Currency              string
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	Places                int32
}

// Policy converts the section to a pricing policy.
func (p PricingConfig) Policy() pricing.Policy {
	return pricing.Policy{
		Currency:              p.Currency,
		TaxRate:               p.TaxRate,
		FreeShippingThreshold: p.FreeShippingThreshold,
		FlatShippingFee:       p.FlatShippingFee,
		Places:                p.Places,
	}
}

type CartConfig struct {
	QuantityStep  int
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// TTL bounds how long checkout idempotency keys are kept.
	TTL time.Duration
}

type KafkaConfig struct {
	Brokers          []string
	OrderEventsTopic string
	StatusTopic      string
	GroupID          string
}

type FeatureFlags struct {
	EnableOrderEvents      bool
	EnableStatusConsumer   bool
	EnableRedisIdempotency bool
}

type LogConfig struct {
	Level string
	// Format is "json" or "console".
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)

	v.SetDefault("PRICING_CURRENCY", "INR")
	v.SetDefault("PRICING_TAX_RATE", "0.12")
	v.SetDefault("PRICING_FREE_SHIPPING_THRESHOLD", "5000")
	v.SetDefault("PRICING_FLAT_SHIPPING_FEE", "100")
	v.SetDefault("PRICING_PLACES", 2)

	v.SetDefault("CART_QUANTITY_STEP", 10)
	v.SetDefault("CART_IDLE_TTL", 86400)
	v.SetDefault("CART_SWEEP_INTERVAL", 600)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TTL", 86400)

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_ORDER_EVENTS_TOPIC", "storefront.order-events")
	v.SetDefault("KAFKA_STATUS_TOPIC", "fulfilment.order-status")
	v.SetDefault("KAFKA_GROUP_ID", "storefront-service")

	v.SetDefault("FEATURE_ORDER_EVENTS", false)
	v.SetDefault("FEATURE_STATUS_CONSUMER", false)
	v.SetDefault("FEATURE_REDIS_IDEMPOTENCY", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SERVICE_VERSION", "dev")
}

// Load reads configuration from the environment and an optional .env file
// in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigName(".env")
	v.AddConfigPath(".")
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	taxRate, err := getEnvDecimal(v, "PRICING_TAX_RATE")
	if err != nil {
		return nil, err
	}
	threshold, err := getEnvDecimal(v, "PRICING_FREE_SHIPPING_THRESHOLD")
	if err != nil {
		return nil, err
	}
	fee, err := getEnvDecimal(v, "PRICING_FLAT_SHIPPING_FEE")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			Mode:            v.GetString("GIN_MODE"),
			ReadTimeout:     getEnvSeconds(v, "SERVER_READ_TIMEOUT"),
			WriteTimeout:    getEnvSeconds(v, "SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: getEnvSeconds(v, "SERVER_SHUTDOWN_TIMEOUT"),
		},
		Pricing: PricingConfig{
			Currency:              strings.ToUpper(strings.TrimSpace(v.GetString("PRICING_CURRENCY"))),
			TaxRate:               taxRate,
			FreeShippingThreshold: threshold,
			FlatShippingFee:       fee,
			Places:                v.GetInt32("PRICING_PLACES"),
		},
		Cart: CartConfig{
			QuantityStep:  v.GetInt("CART_QUANTITY_STEP"),
			IdleTTL:       getEnvSeconds(v, "CART_IDLE_TTL"),
			SweepInterval: getEnvSeconds(v, "CART_SWEEP_INTERVAL"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      getEnvSeconds(v, "REDIS_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers:          getEnvList(v, "KAFKA_BROKERS"),
			OrderEventsTopic: v.GetString("KAFKA_ORDER_EVENTS_TOPIC"),
			StatusTopic:      v.GetString("KAFKA_STATUS_TOPIC"),
			GroupID:          v.GetString("KAFKA_GROUP_ID"),
		},
		Features: FeatureFlags{
			EnableOrderEvents:      v.GetBool("FEATURE_ORDER_EVENTS"),
			EnableStatusConsumer:   v.GetBool("FEATURE_STATUS_CONSUMER"),
			EnableRedisIdempotency: v.GetBool("FEATURE_REDIS_IDEMPOTENCY"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Version: v.GetString("SERVICE_VERSION"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT %d is out of range", c.Server.Port)
	}
	if err := c.Pricing.Policy().Validate(); err != nil {
		return fmt.Errorf("pricing config: %w", err)
	}
	if c.Cart.QuantityStep <= 0 {
		return fmt.Errorf("CART_QUANTITY_STEP must be positive")
	}
	if (c.Features.EnableOrderEvents || c.Features.EnableStatusConsumer) && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when Kafka features are enabled")
	}
	return nil
}

func getEnvSeconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Second
}

func getEnvDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	d, err := pricing.ParseAmount(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvList(v *viper.Viper, key string) []string {
	var out []string
	for _, part := range strings.Split(v.GetString(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
