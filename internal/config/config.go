// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Port             string
	AllowedOrigin    string
	AWSRegion        string
	S3Bucket         string
	CloudfrontDomain string

	WorldWidth    float64
	WorldHeight   float64
	TickRate      int
	FrameEvery    int
	SpawnAttempts int
	SpawnStep     float64
	GravityScale  float64
	GestureTTL    time.Duration
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		AWSRegion:        getEnv("AWS_REGION", "ap-northeast-1"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		CloudfrontDomain: getEnv("CLOUDFRONT_DOMAIN", ""),
	}

	var err error
	if cfg.WorldWidth, err = getEnvFloat("WORLD_WIDTH", 1280); err != nil {
		return nil, err
	}
	if cfg.WorldHeight, err = getEnvFloat("WORLD_HEIGHT", 720); err != nil {
		return nil, err
	}
	if cfg.TickRate, err = getEnvInt("TICK_RATE", 60); err != nil {
		return nil, err
	}
	if cfg.FrameEvery, err = getEnvInt("FRAME_EVERY", 2); err != nil {
		return nil, err
	}
	if cfg.SpawnAttempts, err = getEnvInt("SPAWN_ATTEMPTS", 30); err != nil {
		return nil, err
	}
	if cfg.SpawnStep, err = getEnvFloat("SPAWN_STEP", 10); err != nil {
		return nil, err
	}
	if cfg.GravityScale, err = getEnvFloat("GRAVITY_SCALE", 900); err != nil {
		return nil, err
	}
	if cfg.GestureTTL, err = getEnvDuration("GESTURE_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate port is a number
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("invalid port: must be a number")
	}
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return errors.New("invalid world size: must be positive")
	}
	if c.TickRate <= 0 || c.FrameEvery <= 0 {
		return errors.New("invalid tick rate: must be positive")
	}
	if c.SpawnAttempts <= 0 || c.SpawnStep <= 0 {
		return errors.New("invalid spawn limits: must be positive")
	}
	if c.GestureTTL <= 0 {
		return errors.New("invalid gesture ttl: must be positive")
	}

	return nil
}

// S3Enabled reports whether snapshot storage is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
