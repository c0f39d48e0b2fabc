package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvConfigGetStringUsesDefault(t *testing.T) {
	ec := NewEnvConfig("KG_TEST")
	assert.Equal(t, "fallback", ec.GetString("MISSING_KEY", "fallback"))
}

func TestEnvConfigGetStringPrefersEnvironment(t *testing.T) {
	os.Setenv("KG_TEST_NEO4J_URI", "bolt://example:7687")
	defer os.Unsetenv("KG_TEST_NEO4J_URI")

	ec := NewEnvConfig("KG_TEST")
	assert.Equal(t, "bolt://example:7687", ec.GetString("NEO4J_URI", "bolt://localhost:7687"))
}

func TestLoadGraphConfigDefaults(t *testing.T) {
	gc := LoadGraphConfig("KG_TEST_UNSET")

	assert.Equal(t, "bolt://localhost:7687", gc.URI)
	assert.Equal(t, "neo4j", gc.Username)
	assert.Equal(t, 384, gc.EmbeddingDimensions)
	assert.Equal(t, 10, gc.EffectiveSearchRatio)
	assert.Equal(t, "root", gc.RootSpaceID)
}

func TestGraphConfigValidateRejectsBadScheme(t *testing.T) {
	gc := GraphConfig{
		URI:                  "http://localhost:7687",
		Username:             "neo4j",
		EmbeddingDimensions:  384,
		EffectiveSearchRatio: 10,
		RootSpaceID:          "root",
	}

	err := gc.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NEO4J_URI")
}

func TestGraphConfigValidateAcceptsBoltScheme(t *testing.T) {
	gc := GraphConfig{
		URI:                  "neo4j+s://prod:7687",
		Username:             "neo4j",
		EmbeddingDimensions:  1536,
		EffectiveSearchRatio: 10,
		RootSpaceID:          "root",
	}

	assert.NoError(t, gc.Validate())
}
