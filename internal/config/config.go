package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	CartKeyPrefix string `env:"CART_KEY_PREFIX" envDefault:"cart:"`
	CartTTLDays   int    `env:"CART_TTL_DAYS" envDefault:"30"`

	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	CheckoutTopic string   `env:"KAFKA_CHECKOUT_TOPIC" envDefault:"cart.checkout.v1"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// CartTTL is the duration after which Redis evicts a stored cart.
func (c Config) CartTTL() time.Duration {
	return time.Duration(c.CartTTLDays) * 24 * time.Hour
}
