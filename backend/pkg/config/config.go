package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreMemory = "memory"
	StoreNeo4j  = "neo4j"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Store
	StoreBackend string

	// Neo4j (only used when StoreBackend is neo4j)
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Graph layout
	LayoutRadius   float64 // circle radius for projected nodes
	LayoutCenterX  float64
	LayoutCenterY  float64
	LayoutJitter   float64 // max absolute jitter per axis, 0 disables
	ScoreThreshold float64 // popularity score above which a node is "high"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		StoreBackend:   getEnv("STORE_BACKEND", StoreMemory),
		Neo4jURI:       getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:      getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:  getEnv("NEO4J_PASSWORD", "password"),
		LayoutRadius:   getEnvFloat("LAYOUT_RADIUS", 200),
		LayoutCenterX:  getEnvFloat("LAYOUT_CENTER_X", 400),
		LayoutCenterY:  getEnvFloat("LAYOUT_CENTER_Y", 300),
		LayoutJitter:   getEnvFloat("LAYOUT_JITTER", 0),
		ScoreThreshold: getEnvFloat("SCORE_THRESHOLD", 5.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
		// nothing external required
	case StoreNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI is required")
		}
		if c.Neo4jUser == "" {
			return fmt.Errorf("NEO4J_USER is required")
		}
		if c.Neo4jPassword == "" {
			return fmt.Errorf("NEO4J_PASSWORD is required")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND: %s", c.StoreBackend)
	}
	if c.LayoutRadius <= 0 {
		return fmt.Errorf("LAYOUT_RADIUS must be positive")
	}
	if c.LayoutJitter < 0 {
		return fmt.Errorf("LAYOUT_JITTER must not be negative")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseFloat(value, 64); err == nil {
			return result
		}
	}
	return defaultValue
}
