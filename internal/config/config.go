package config

import (
	"os"
	"strings"
)

type Config struct {
	MongoURI       string
	DBName         string
	RedisURI       string // optional; Redis-backed rate limiting is enabled when set
	JWTSecret      string
	EncryptionKey  string // base64-encoded 32-byte key for the backup vault
	TOTPIssuer     string
	Port           string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS (comma separated)
	Host           string   // Raw HOST env (e.g. https://api.justp2p.app)
	AllowedHost    string   // Hostname only, for the strict host check (production only)
	Environment    string   // ENV: production, development, etc.
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	// AllowedHost is only set in production; the host check is skipped in development.
	var allowedHost string
	if env == "production" {
		allowedHost = stripToHostname(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", getEnv("CORS_ORIGINS", "")))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		MongoURI:       getEnv("MONGO_URL", getEnv("MONGODB_URI", "mongodb://localhost:27017/justp2p")),
		DBName:         getEnv("DB_NAME", "justp2p"),
		RedisURI:       getEnv("REDIS_URI", ""),
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		TOTPIssuer:     getEnv("TOTP_ISSUER", "JustP2P"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: allowedOrigins,
		Host:           host,
		AllowedHost:    allowedHost,
		Environment:    env,
	}
}

// stripToHostname reduces a URL-ish value to the bare hostname.
func stripToHostname(s string) string {
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	if idx := strings.Index(s, "/"); idx != -1 {
		s = s[:idx]
	}
	if idx := strings.Index(s, ":"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
