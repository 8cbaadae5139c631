// Package config loads server configuration from the environment, with
// optional .env support for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port   int
	DBPath string

	// TokenSecret signs session tokens; generate with `openssl rand -hex 32`.
	TokenSecret string

	CORSAllowedOrigins []string

	// SMTP relay for password-reset mail. When SMTPHost is empty the server
	// falls back to logging outbound mail instead of delivering it.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:               8080,
		DBPath:             getEnv("DB_PATH", "data/inkwell.db"),
		TokenSecret:        getEnv("TOKEN_SECRET", ""),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           587,
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		MailFrom:           getEnv("MAIL_FROM", "no-reply@localhost"),
	}

	if v := getEnv("PORT", ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := getEnv("SMTP_PORT", ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid SMTP_PORT %q", v)
		}
		cfg.SMTPPort = port
	}

	if cfg.TokenSecret == "" {
		return Config{}, fmt.Errorf("config: TOKEN_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
