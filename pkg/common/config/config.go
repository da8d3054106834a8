package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort   string
	ServerHost   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers []string
	KafkaGroupID string

	// Extract delivery
	ExtractDir          string
	ExtractBaseURL      string
	ExtractTokenURL     string
	ExtractClientID     string
	ExtractClientSecret string
	ExtractFetchTimeout time.Duration

	// Feature Store
	FeatureStoreCacheTTL time.Duration

	// Derivation defaults
	EcogDaysBefore  int
	EcogDaysAfter   int
	EcogDaysFurther int
	BiomarkerAfter  int
	DictionaryFile  string
	MaxRunWorkers   int
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "cohortforge"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "cohortforge123"),
		PostgresDB:       getEnv("POSTGRES_DB", "cohortforge"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "cohortforge-derive"),

		ExtractDir:          getEnv("EXTRACT_DIR", "./extracts"),
		ExtractBaseURL:      getEnv("EXTRACT_BASE_URL", ""),
		ExtractTokenURL:     getEnv("EXTRACT_TOKEN_URL", ""),
		ExtractClientID:     getEnv("EXTRACT_CLIENT_ID", ""),
		ExtractClientSecret: getEnv("EXTRACT_CLIENT_SECRET", ""),
		ExtractFetchTimeout: getDuration("EXTRACT_FETCH_TIMEOUT", 60*time.Second),

		FeatureStoreCacheTTL: getDuration("FEATURE_STORE_CACHE_TTL", 24*time.Hour),

		EcogDaysBefore:  getIntEnv("ECOG_DAYS_BEFORE", 90),
		EcogDaysAfter:   getIntEnv("ECOG_DAYS_AFTER", 0),
		EcogDaysFurther: getIntEnv("ECOG_DAYS_FURTHER", 180),
		BiomarkerAfter:  getIntEnv("BIOMARKER_DAYS_AFTER", 0),
		DictionaryFile:  getEnv("DICTIONARY_FILE", ""),
		MaxRunWorkers:   getIntEnv("MAX_RUN_WORKERS", 2),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
