package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays configuration values from environment variables.
// The entry point loads a .env file (godotenv) before this runs, so a
// local development file and real environment both land here.
//
// Recognized variables:
//
//	ADDRESS            HTTP bind address
//	DATABASE_DSN       PostgreSQL DSN
//	SECRET_KEY         JWT HMAC secret
//	ACCESS_TOKEN_TTL   access token lifetime (time.ParseDuration format)
//	REFRESH_TOKEN_TTL  refresh token lifetime (time.ParseDuration format)
//	AUTH_RATE_RPS      auth endpoint rate limit, requests per second
//	AUTH_RATE_BURST    auth endpoint rate limit burst
func parseEnv(config *Config) {
	if v := os.Getenv("ADDRESS"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
	if v := os.Getenv("AUTH_RATE_RPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.AuthRateLimitRPS = n
		}
	}
	if v := os.Getenv("AUTH_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.AuthRateLimitBurst = n
		}
	}
}
