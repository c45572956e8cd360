// Package config builds runtime configuration from environment variables so
// main stays lean. Unset optional backends disable the feature rather than
// failing startup.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// DatabaseConfig holds the registry database connection settings. An empty
// URL selects the in-memory stores.
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds the mapping cache connection settings. An empty URL
// disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the lookup event pipeline settings. An empty broker list
// disables event publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// MappingCacheTTL bounds staleness of cached occurrence mappings.
var MappingCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("COLLREG_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("COLLREG_KAFKA_TOPIC")
	if topic == "" {
		topic = "collreg.lookup.resolved"
	}

	var brokers []string
	if raw := os.Getenv("COLLREG_KAFKA_BROKERS"); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}

	return Server{
		Addr: addr,
		Database: DatabaseConfig{
			URL: os.Getenv("COLLREG_DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("COLLREG_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
