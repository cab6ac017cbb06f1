package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/rvilhelmsen/beachrank/internal/rating"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Port: getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		Rating:    LoadRating(),
		ProjectID: getEnv("GCP_PROJECT"),
	}
	return cfg
}

// LoadRating reads the rating model tunables. Every knob has a default, so a
// bare environment yields the standard league configuration.
func LoadRating() rating.Config {
	return rating.Config{
		K:                    getEnvFloat("K", 40),
		InitialRating:        getEnvFloat("INITIAL_RATING", 1200),
		UsePointDifferential: getEnvBool("USE_POINT_DIFFERENTIAL", false),
		WinPoints:            getEnvInt("WIN_POINTS", 3),
		LossPoints:           getEnvInt("LOSS_POINTS", 1),
	}
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warn("Invalid float in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn("Invalid integer in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn("Invalid boolean in environment, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return parsed
}
