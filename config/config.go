package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Engine 決定後端使用哪種「兩值取大」聚合函數 (GREATEST / MAX)
	Engine string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type ServerConfig struct {
	Addr string
}

// SchedulerConfig 快取刷新排程的時間參數
type SchedulerConfig struct {
	// Period 排程觸發週期
	Period time.Duration
	// ActivityWindow 只掃描最近有活動紀錄的活動 (預設 7 天)
	ActivityWindow time.Duration
	// StaleCeiling 快取絕對過期上限，與活動紀錄無關 (預設 2 小時)
	StaleCeiling time.Duration
	// SubEventHorizon 已結束超過此時間的場次不再重算 (預設 14 天)
	SubEventHorizon time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Database:  GetDatabaseConfig(),
		Redis:     GetRedisConfig(),
		Server:    GetServerConfig(),
		Scheduler: GetSchedulerConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
		Engine:   "postgres",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Database:  *testConfig,
		Redis:     testRedisConfig,
		Server:    ServerConfig{Addr: ":8081"},
		Scheduler: GetSchedulerConfig(),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		Engine:   getEnv("DB_ENGINE", "postgres"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Addr: getEnv("SERVER_ADDR", ":8080"),
	}
}

func GetSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Period:          getEnvDuration("SCHEDULER_PERIOD", time.Minute),
		ActivityWindow:  getEnvDuration("SCHEDULER_ACTIVITY_WINDOW", 7*24*time.Hour),
		StaleCeiling:    getEnvDuration("SCHEDULER_STALE_CEILING", 2*time.Hour),
		SubEventHorizon: getEnvDuration("SCHEDULER_SUBEVENT_HORIZON", 14*24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return d
}
