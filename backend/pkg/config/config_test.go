package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 200.0, cfg.LayoutRadius)
	assert.Equal(t, 400.0, cfg.LayoutCenterX)
	assert.Equal(t, 300.0, cfg.LayoutCenterY)
	assert.Equal(t, 0.0, cfg.LayoutJitter)
	assert.Equal(t, 5.0, cfg.ScoreThreshold)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LAYOUT_JITTER", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25.0, cfg.LayoutJitter)
}

func TestLoad_MalformedFloatFallsBackToDefault(t *testing.T) {
	t.Setenv("LAYOUT_JITTER", "25abc")
	t.Setenv("SCORE_THRESHOLD", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	// malformed values are rejected whole, not prefix-parsed
	assert.Equal(t, 0.0, cfg.LayoutJitter)
	assert.Equal(t, 5.0, cfg.ScoreThreshold)
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreBackend: "bogus", LayoutRadius: 200}
	assert.Error(t, cfg.Validate())

	cfg = &Config{StoreBackend: StoreNeo4j, LayoutRadius: 200}
	assert.Error(t, cfg.Validate()) // missing neo4j settings

	cfg = &Config{
		StoreBackend:  StoreNeo4j,
		Neo4jURI:      "bolt://localhost:7687",
		Neo4jUser:     "neo4j",
		Neo4jPassword: "password",
		LayoutRadius:  200,
	}
	assert.NoError(t, cfg.Validate())

	cfg = &Config{StoreBackend: StoreMemory, LayoutRadius: 0}
	assert.Error(t, cfg.Validate())
}
