package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileInsertAttributes(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := InsertAttributesParams{
		EntityID:     "entity-1",
		SpaceID:      "space-1",
		SpaceVersion: "2",
		Attributes:   NewAttributes().Text(NamePropertyID, "Alice"),
		Now:          now,
		Block:        "block-2",
	}

	stmt := compileInsertAttributes(p)

	assert.Contains(t, stmt.Cypher, "MERGE (e:Entity {id: $entity_id})")
	assert.Contains(t, stmt.Cypher, "UNWIND $attributes AS attr")
	assert.Equal(t, "entity-1", stmt.Params["entity_id"])
	assert.Equal(t, "space-1", stmt.Params["space_id"])
	assert.Equal(t, "2", stmt.Params["space_version"])
	assert.Equal(t, "2026-01-02T03:04:05Z", stmt.Params["now"])
	assert.Equal(t, "block-2", stmt.Params["block"])

	attrs, ok := stmt.Params["attributes"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, attrs, 1)
	assert.Equal(t, NamePropertyID, attrs[0]["id"])
	assert.Equal(t, "Alice", attrs[0]["value"])
	assert.Equal(t, string(ValueTypeText), attrs[0]["value_type"])
	assert.Nil(t, attrs[0]["embedding"])
}

func TestCompileInsertAttributesWithEmbedding(t *testing.T) {
	p := InsertAttributesParams{
		EntityID:     "entity-1",
		SpaceID:      "space-1",
		SpaceVersion: "1",
		Attributes: NewAttributes().Attribute(AttributeNode{
			ID:        DescriptionPropertyID,
			Value:     NewTextValue("a description"),
			Embedding: []float64{0.1, 0.2, 0.3},
		}),
	}

	stmt := compileInsertAttributes(p)
	attrs := stmt.Params["attributes"].([]map[string]any)
	require.Len(t, attrs, 1)

	embedding, ok := attrs[0]["embedding"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{0.1, 0.2, 0.3}, embedding)
}

// TestCompileInsertAttributesScopesAttributeMergeToEntity guards against a
// standalone `MERGE (a:Attribute {id: ...})`: merged on its own, that pattern
// is keyed only by label+id and is reused by every entity in the graph that
// ever writes the same attribute id, so two different entities writing the
// same NamePropertyID would collapse onto one shared Attribute node and
// clobber each other's value. The Attribute node must instead be merged as
// part of the same combined path as the entity's own ATTRIBUTE edge.
func TestCompileInsertAttributesScopesAttributeMergeToEntity(t *testing.T) {
	alice := compileInsertAttributes(InsertAttributesParams{
		EntityID:     "alice",
		SpaceID:      "space-1",
		SpaceVersion: "0",
		Attributes:   NewAttributes().Text(NamePropertyID, "Alice"),
	})
	bob := compileInsertAttributes(InsertAttributesParams{
		EntityID:     "bob",
		SpaceID:      "space-1",
		SpaceVersion: "0",
		Attributes:   NewAttributes().Text(NamePropertyID, "Bob"),
	})

	assert.NotContains(t, alice.Cypher, "MERGE (a:Attribute")
	assert.NotContains(t, bob.Cypher, "MERGE (a:Attribute")
	assert.Contains(t, alice.Cypher, "MERGE (e) -[r:ATTRIBUTE {space_id: $space_id, min_version: $space_version}]-> (a:Attribute {id: attr.id})")
	assert.Equal(t, alice.Cypher, bob.Cypher)
	assert.Equal(t, "alice", alice.Params["entity_id"])
	assert.Equal(t, "bob", bob.Params["entity_id"])
}

func TestCompileFindOneAttributesCurrent(t *testing.T) {
	stmt := compileFindOneAttributes(FindOneAttributesParams{
		EntityID: "entity-1",
		SpaceID:  "space-1",
	})

	assert.Contains(t, stmt.Cypher, "(e:Entity {id: $entity_id}) -[r:ATTRIBUTE {space_id: $space_id}]-> (a:Attribute)")
	assert.Contains(t, stmt.Cypher, "WHERE r.max_version IS NULL")
	assert.Equal(t, "entity-1", stmt.Params["entity_id"])
	assert.Equal(t, "space-1", stmt.Params["space_id"])
}

func TestCompileFindOneAttributesAtVersion(t *testing.T) {
	stmt := compileFindOneAttributes(FindOneAttributesParams{
		EntityID: "entity-1",
		SpaceID:  "space-1",
		Version:  AtVersion("3"),
	})

	assert.Contains(t, stmt.Cypher, "r.min_version <= $version1 AND (r.max_version IS NULL OR r.max_version > $version1)")
	assert.Equal(t, "3", stmt.Params["version1"])
}
