package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for service token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig creates a JWT configuration from the environment. It reads
// SERVICE_JWT_SECRET (required) and SERVICE_JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("SERVICE_JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("SERVICE_JWT_SECRET is required but not set")
	}

	expirationStr := os.Getenv("SERVICE_JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24"
	}
	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVICE_JWT_EXPIRATION_HOURS: %v", err)
	}

	return NewJWTConfigFrom(secret, expirationHours)
}

// NewJWTConfigFrom builds a JWT configuration from explicit values.
func NewJWTConfigFrom(secret string, expirationHours int) (*JWTConfig, error) {
	cfg := &JWTConfig{Secret: secret, ExpirationHours: expirationHours}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("SERVICE_JWT_SECRET cannot be empty")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("SERVICE_JWT_SECRET must be at least 16 characters, got: %d", len(c.Secret))
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("SERVICE_JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
