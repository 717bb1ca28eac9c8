package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Fare      FareConfig
	Queue     QueueConfig
	Telemetry TelemetryConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port    string
	Mode    string // cli, server, both
	GinMode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// 啟動時建立資料表並補齊預設車位
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// FareConfig 每小時費率，字串保留原始精度交給 decimal 解析
type FareConfig struct {
	CarRatePerHour  string
	BikeRatePerHour string
}

type QueueConfig struct {
	Backend    string // memory, redis
	BufferSize int
	ConsumerID string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
}

type LogConfig struct {
	Level string
}

// LoadConfig 先讀取 .env（不存在時忽略），再從環境變數組出設定
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Server:    GetServerConfig(),
		Database:  GetDatabaseConfig(),
		Redis:     GetRedisConfig(),
		Fare:      GetFareConfig(),
		Queue:     GetQueueConfig(),
		Telemetry: GetTelemetryConfig(),
		Log:       LogConfig{Level: getEnv("LOG_LEVEL", "info")},
	}
}

func LoadTestConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8080", Mode: "server", GinMode: "test"},
		Database: DatabaseConfig{
			Host:        getEnv("TEST_DB_HOST", "localhost"),
			Port:        getEnv("TEST_DB_PORT", "5433"), // 測試 DB 用 5433 port
			User:        "postgres",
			Password:    "postgres",
			DBName:      "test_db",
			SSLMode:     "disable",
			AutoMigrate: true,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6380", // 測試 Redis 用 6380 port
			Password: "",
			DB:       1,
		},
		Fare:      FareConfig{CarRatePerHour: DefaultCarRatePerHour, BikeRatePerHour: DefaultBikeRatePerHour},
		Queue:     QueueConfig{Backend: "memory", BufferSize: 16},
		Telemetry: TelemetryConfig{Enabled: false, ServiceName: "parking-system-test"},
		Log:       LogConfig{Level: "debug"},
	}
}

const (
	DefaultCarRatePerHour  = "1.5"
	DefaultBikeRatePerHour = "1.0"
)

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnv("APP_PORT", "8080"),
		Mode:    getEnv("APP_MODE", "cli"),
		GinMode: getEnv("GIN_MODE", "release"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        getEnv("DB_PORT", "5432"),
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "parking"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
	}
}

func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func GetFareConfig() FareConfig {
	return FareConfig{
		CarRatePerHour:  getEnv("FARE_CAR_RATE_PER_HOUR", DefaultCarRatePerHour),
		BikeRatePerHour: getEnv("FARE_BIKE_RATE_PER_HOUR", DefaultBikeRatePerHour),
	}
}

func GetQueueConfig() QueueConfig {
	return QueueConfig{
		Backend:    getEnv("QUEUE_BACKEND", "memory"),
		BufferSize: getEnvInt("QUEUE_BUFFER_SIZE", 128),
		ConsumerID: getEnv("QUEUE_CONSUMER_ID", ""),
	}
}

func GetTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      getEnvBool("OTEL_ENABLED", false),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "parking-system"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// 數值解析失敗時回退預設值
func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return b
}
