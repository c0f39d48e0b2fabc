package graphdb

import (
	"testing"

	"github.com/evalgo-org/kgraph/common"
	"github.com/evalgo-org/kgraph/config"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionConfigUsesConfiguredDatabase(t *testing.T) {
	d := &Driver{database: "geo"}

	cfg := d.sessionConfig(neo4j.AccessModeWrite)

	assert.Equal(t, "geo", cfg.DatabaseName)
	assert.Equal(t, neo4j.AccessModeWrite, cfg.AccessMode)
}

func TestLogStatementEmitsCompiledQueryAtDebugLevel(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	d := &Driver{log: logger}

	d.logStatement("MATCH (n) RETURN n", map[string]any{"id": "abc"})

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.DebugLevel, hook.Entries[0].Level)
	assert.Equal(t, "MATCH (n) RETURN n", hook.Entries[0].Message)
	assert.Equal(t, "abc", hook.Entries[0].Data["params"].(map[string]any)["id"])
}

func TestLogStatementNoopWithoutLogger(t *testing.T) {
	d := &Driver{}
	assert.NotPanics(t, func() {
		d.logStatement("MATCH (n) RETURN n", nil)
	})
}

func TestLogStatementTagsEachCallWithAFreshCorrelationID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	d := &Driver{log: logger}

	d.logStatement("MATCH (n) RETURN n", nil)
	d.logStatement("MATCH (n) RETURN n", nil)

	require.Len(t, hook.Entries, 2)
	first, ok := hook.Entries[0].Data["correlation_id"].(string)
	require.True(t, ok)
	second, ok := hook.Entries[1].Data["correlation_id"].(string)
	require.True(t, ok)
	assert.Contains(t, first, "stmt-")
	assert.NotEqual(t, first, second)
}

func TestConfigFromEnvCopiesConnectionFieldsAndLogger(t *testing.T) {
	gc := config.GraphConfig{
		URI:      "bolt://example:7687",
		Username: "neo4j",
		Password: "secret",
	}
	logger := DefaultLogger()

	cfg := ConfigFromEnv(gc, logger)

	assert.Equal(t, "bolt://example:7687", cfg.URI)
	assert.Equal(t, "neo4j", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Same(t, logger, cfg.Logger)
}

func TestDefaultLoggerReturnsTheSharedCommonLogger(t *testing.T) {
	assert.Same(t, common.Logger, DefaultLogger())
}
