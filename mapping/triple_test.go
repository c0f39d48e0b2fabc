package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestInsertFindOneTriple exercises the insert/read round trip: insert a triple,
// then re-insert a new value at a later version and confirm the compiled
// queries select the right version.
func TestInsertFindOneTriple(t *testing.T) {
	stmt := compileInsertAttributes(InsertAttributesParams{
		EntityID:     "abc",
		SpaceID:      "ROOT",
		SpaceVersion: "0",
		Attributes:   NewAttributes().Attribute(AttributeNode{ID: "name", Value: NewTextValue("Alice")}),
		Now:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "0", stmt.Params["space_version"])

	current := compileFindOneTriple(FindOneTripleParams{
		EntityID:    "abc",
		AttributeID: "name",
		SpaceID:     "ROOT",
	})
	assert.Contains(t, current.Cypher, "WHERE r.max_version IS NULL")

	atV0 := compileFindOneTriple(FindOneTripleParams{
		EntityID:    "abc",
		AttributeID: "name",
		SpaceID:     "ROOT",
		Version:     AtVersion("0"),
	})
	assert.Contains(t, atV0.Cypher, "r.min_version <= $version1")
	assert.Equal(t, "0", atV0.Params["version1"])
}

// TestDeleteTripleLeavesHistory checks the delete/read pair: deletion retires
// only the current edge, and a read at an earlier version still uses the
// version window rather than the current-only filter.
func TestDeleteTripleLeavesHistory(t *testing.T) {
	stmt := compileDeleteTriple(DeleteTripleParams{
		EntityID:    "abc",
		AttributeID: "name",
		SpaceID:     "ROOT",
		Version:     "2",
	})

	assert.Contains(t, stmt.Cypher, "WHERE r.max_version IS NULL")
	assert.Contains(t, stmt.Cypher, "SET r.max_version = $version")
	assert.Equal(t, "2", stmt.Params["version"])

	readCurrent := compileFindOneTriple(FindOneTripleParams{
		EntityID:    "abc",
		AttributeID: "name",
		SpaceID:     "ROOT",
	})
	assert.Contains(t, readCurrent.Cypher, "WHERE r.max_version IS NULL")

	readAtV0 := compileFindOneTriple(FindOneTripleParams{
		EntityID:    "abc",
		AttributeID: "name",
		SpaceID:     "ROOT",
		Version:     AtVersion("0"),
	})
	assert.Contains(t, readAtV0.Cypher, "r.min_version <= $version1")
}

func TestCompileFindManyTriples(t *testing.T) {
	limit := 10
	stmt := compileFindManyTriples(TripleFilter{Limit: &limit})

	assert.Contains(t, stmt.Cypher, "MATCH (e:Entity) -[r:ATTRIBUTE]-> (a:Attribute)")
	assert.Contains(t, stmt.Cypher, "LIMIT 10")
}

func TestCompileFindManyTriplesWithFilters(t *testing.T) {
	stmt := compileFindManyTriples(TripleFilter{
		EntityID:    Value("alice"),
		AttributeID: Value("name"),
	})

	assert.Contains(t, stmt.Cypher, "a.id = $id1")
	assert.Contains(t, stmt.Cypher, "e.id = $id2")
}
