package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string

	SessionSecret     string
	SessionMaxAgeDays int
	CookieSecure      bool

	GatewayURL           string
	GatewayAPIKey        string
	GatewayWriteServer   string
	GatewayWriteDatabase string

	RedisAddr string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "planora_user"),
		DBPassword: getEnv("DB_PASSWORD", "planora_pass"),
		DBName:     getEnv("DB_NAME", "planora_db"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		SessionSecret:     getEnv("SESSION_SECRET", "supersecretkey"),
		SessionMaxAgeDays: getEnvInt("SESSION_MAX_AGE_DAYS", 7),
		CookieSecure:      getEnv("APP_ENV", "development") == "production",

		GatewayURL:           getEnv("GATEWAY_URL", "http://localhost:9000"),
		GatewayAPIKey:        getEnv("GATEWAY_API_KEY", ""),
		GatewayWriteServer:   getEnv("GATEWAY_WRITE_SERVER", "planora-ext"),
		GatewayWriteDatabase: getEnv("GATEWAY_WRITE_DATABASE", "planora_mirror"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}
