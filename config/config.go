package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppMode string

	// Upstream messaging platform.
	APIBaseURL     string
	APIToken       string
	EventStreamURL string

	// Local identity the engine acts as.
	UserID     string
	UserName   string
	UserAvatar string

	PollIntervalSec   int
	TypingDebounceMs  int
	TypingRemoteTTLMs int

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	S3Endpoint   string
	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3PublicBase string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		AppMode:           getEnv("APP_MODE", "debug"),
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:9090"),
		APIToken:          getEnv("API_TOKEN", ""),
		EventStreamURL:    getEnv("EVENT_STREAM_URL", ""),
		UserID:            getEnv("USER_ID", "local-user"),
		UserName:          getEnv("USER_NAME", "Local User"),
		UserAvatar:        getEnv("USER_AVATAR", ""),
		PollIntervalSec:   getEnvAsInt("POLL_INTERVAL_SEC", 30),
		TypingDebounceMs:  getEnvAsInt("TYPING_DEBOUNCE_MS", 2000),
		TypingRemoteTTLMs: getEnvAsInt("TYPING_REMOTE_TTL_MS", 6000),
		RedisHost:         getEnv("REDIS_HOST", ""),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		S3PublicBase:      getEnv("S3_PUBLIC_BASE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
