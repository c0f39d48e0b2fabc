package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceLoggerCarriesServiceFields(t *testing.T) {
	cl := ServiceLogger("kgraph", "v1")

	assert.Equal(t, "kgraph", cl.fields["service"])
	assert.Equal(t, "v1", cl.fields["version"])
}

func TestContextLoggerWithFieldIsImmutable(t *testing.T) {
	base := NewContextLogger(Logger, map[string]interface{}{"space_id": "root"})
	child := base.WithField("entity_id", "abc")

	assert.NotContains(t, base.fields, "entity_id")
	assert.Equal(t, "root", child.fields["space_id"])
	assert.Equal(t, "abc", child.fields["entity_id"])
}

func TestNewCorrelationIDHasPrefixAndIsUnique(t *testing.T) {
	a := NewCorrelationID("op")
	b := NewCorrelationID("op")

	assert.Contains(t, a, "op-")
	assert.NotEqual(t, a, b)
}

func TestWithCorrelationIDAddsField(t *testing.T) {
	base := NewContextLogger(Logger, nil)
	tagged := base.WithCorrelationID("correlation_id", "stmt")

	id, ok := tagged.fields["correlation_id"].(string)
	assert.True(t, ok)
	assert.Contains(t, id, "stmt-")
}

func TestLogOperationReturnsUnderlyingError(t *testing.T) {
	logger := NewContextLogger(Logger, nil)
	wantErr := assert.AnError

	err := LogOperation(logger, "test-op", func() error { return wantErr })

	assert.Equal(t, wantErr, err)
}

func TestLogOperationSucceeds(t *testing.T) {
	logger := NewContextLogger(Logger, nil)

	err := LogOperation(logger, "test-op", func() error { return nil })

	assert.NoError(t, err)
}
