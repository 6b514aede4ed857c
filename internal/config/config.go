package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName  string
	Server       ServerConfig
	Database     DatabaseConfig
	Log          LogConfig
	Storage      StorageConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

type LogConfig struct {
	Level string
}

type StorageConfig struct {
	UploadsDir     string
	MaxUploadBytes int64
}

type RedisConfig struct {
	Addr      string
	StatusTTL time.Duration
}

// KafkaConfig is optional. With no brokers the notification sink falls back
// to logging.
type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
}

type NotificationConfig struct {
	QueueSize       int
	DeliveryTimeout time.Duration
}

type RateLimitConfig struct {
	UploadRequests int
	UploadWindow   time.Duration
}

// Load reads an optional .env file, an optional YAML file named by
// CONFIG_FILE and the process environment, in increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_NAME", "storefront")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "20s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "storefront")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "storefront")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("DB_TX_TIMEOUT", "5s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_STATUS_TTL", "5m")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_NOTIFICATION_TOPIC", "storefront.notifications")
	v.SetDefault("NOTIFY_QUEUE_SIZE", 256)
	v.SetDefault("NOTIFY_DELIVERY_TIMEOUT", "10s")
	v.SetDefault("UPLOAD_RATE_LIMIT_REQUESTS", 3)
	v.SetDefault("UPLOAD_RATE_LIMIT_WINDOW", "3s")

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	durations := map[string]time.Duration{}
	for _, key := range []string{
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_REQUEST_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
		"DB_CONN_MAX_LIFETIME", "DB_TX_TIMEOUT", "REDIS_STATUS_TTL", "NOTIFY_DELIVERY_TIMEOUT"} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		durations[key] = d
	}

	cfg := &Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     durations["SERVER_READ_TIMEOUT"],
			WriteTimeout:    durations["SERVER_WRITE_TIMEOUT"],
			RequestTimeout:  durations["SERVER_REQUEST_TIMEOUT"],
			ShutdownTimeout: durations["SERVER_SHUTDOWN_TIMEOUT"],
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: durations["DB_CONN_MAX_LIFETIME"],
			TxTimeout:       durations["DB_TX_TIMEOUT"],
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Storage: StorageConfig{
			UploadsDir:     v.GetString("UPLOADS_DIR"),
			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("REDIS_ADDR"),
			StatusTTL: durations["REDIS_STATUS_TTL"],
		},
		Kafka: KafkaConfig{
			Brokers:           splitCSV(v.GetString("KAFKA_BROKERS")),
			NotificationTopic: v.GetString("KAFKA_NOTIFICATION_TOPIC"),
		},
		Notification: NotificationConfig{
			QueueSize:       v.GetInt("NOTIFY_QUEUE_SIZE"),
			DeliveryTimeout: durations["NOTIFY_DELIVERY_TIMEOUT"],
		},
		RateLimit: RateLimitConfig{
			UploadRequests: v.GetInt("UPLOAD_RATE_LIMIT_REQUESTS"),
			UploadWindow:   v.GetDuration("UPLOAD_RATE_LIMIT_WINDOW"),
		},
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
