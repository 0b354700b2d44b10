package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading an
// optional .env file first. A missing .env file is not an error.
//
// Recognized variables:
//
//	MESSAGELY_ADDR         HTTP bind address
//	MESSAGELY_DATABASE_DSN PostgreSQL DSN
//	MESSAGELY_SECRET_KEY   JWT HMAC secret
//	MESSAGELY_BCRYPT_COST  bcrypt work factor
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("MESSAGELY_ADDR"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("MESSAGELY_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("MESSAGELY_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("MESSAGELY_BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil {
			config.BcryptCost = cost
		}
	}
}
