package config

import (
	"os"
	"strings"
)

// Config carries everything the handlers need that used to live in
// process-wide constants: connection string, listen port, the shared API
// token, the JWT signing secret, the image upload directory and the allowed
// CORS origins.
type Config struct {
	DatabaseDSN string
	Port        string
	APIToken    string
	JWTSecret   string
	UploadDir   string
	CORSOrigins []string
}

func FromEnv() *Config {
	return &Config{
		DatabaseDSN: env("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=ecom port=5432 sslmode=disable"),
		Port:        env("PORT", "8080"),
		APIToken:    env("API_TOKEN", "1"),
		JWTSecret:   env("JWT_SECRET", "change-me"),
		UploadDir:   env("UPLOAD_DIR", "uploads/products"),
		CORSOrigins: strings.Split(env("CORS_ORIGINS", "*"), ","),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
