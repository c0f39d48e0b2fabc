package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRelationEdgeRoundTrip exercises the insert/read round trip: insert an
// edge-form relation and confirm the compiled insert and find-one queries
// agree on id/from/to/relation_type/index.
func TestRelationEdgeRoundTrip(t *testing.T) {
	insert := compileInsertRelationEdge(InsertRelationEdgeParams{
		ID:           "abc",
		From:         "alice",
		To:           "bob",
		RelationType: "knows",
		Index:        "0",
		SpaceID:      "ROOT",
		SpaceVersion: "0",
		Now:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Contains(t, insert.Cypher, "MATCH (f:Entity {id: $from}), (t:Entity {id: $to})")
	assert.Equal(t, "abc", insert.Params["id"])
	assert.Equal(t, "alice", insert.Params["from"])
	assert.Equal(t, "bob", insert.Params["to"])
	assert.Equal(t, "knows", insert.Params["relation_type"])

	find := compileFindManyRelationEdges(RelationEdgeFilter{
		ID: Value("abc"),
	})
	assert.Contains(t, find.Cypher, "(from_entity:Entity) -[r:RELATION]-> (to_entity:Entity)")
	assert.Equal(t, "abc", find.Params["id1"])
}

// TestRelationEdgeFindManyOrdersByIndex checks that a find-many filtered by
// relation_type and from_id binds both filters and orders by index ascending.
func TestRelationEdgeFindManyOrdersByIndex(t *testing.T) {
	stmt := compileFindManyRelationEdges(RelationEdgeFilter{
		RelationType: Value("knows"),
		From:         Value("alice"),
	})

	assert.Contains(t, stmt.Cypher, "ORDER BY r.index")
	assert.Equal(t, "alice", stmt.Params["id1"])
	assert.Equal(t, "knows", stmt.Params["relation_type2"])
}

func TestRelationEdgeFindManySelectTo(t *testing.T) {
	stmt := compileFindManyRelationEdges(RelationEdgeFilter{
		From:     Value("alice"),
		SelectTo: true,
	})

	assert.Contains(t, stmt.Cypher, "RETURN to_entity.id AS to_id")
	assert.NotContains(t, stmt.Cypher, "r.relation_type AS relation_type")
}

func TestRelationEdgeDeleteRetiresCurrent(t *testing.T) {
	stmt := compileDeleteRelationEdge(DeleteRelationEdgeParams{
		ID:      "abc",
		SpaceID: "ROOT",
		Version: "1",
	})

	assert.Contains(t, stmt.Cypher, "WHERE r.max_version IS NULL")
	assert.Equal(t, "1", stmt.Params["version"])
}

func TestInsertRelationNodeWritesFourRoleEdgesAndIndex(t *testing.T) {
	stmt := compileInsertRelationNode(InsertRelationNodeParams{
		ID:           "abc",
		From:         "alice",
		To:           "bob",
		RelationType: "knows",
		Index:        "0",
		SpaceID:      "ROOT",
		SpaceVersion: "0",
		Now:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Contains(t, stmt.Cypher, "MERGE (rel:Entity:Relation {id: $id})")
	assert.Contains(t, stmt.Cypher, "`"+RelationFromAttrID+"`")
	assert.Contains(t, stmt.Cypher, "`"+RelationToAttrID+"`")
	assert.Contains(t, stmt.Cypher, "`"+RelationTypeAttrID+"`")
	assert.Contains(t, stmt.Cypher, "idx_attr:Attribute {id: $index_attr_id})")
	assert.Equal(t, RelationIndexID, stmt.Params["index_attr_id"])
	assert.Equal(t, "0", stmt.Params["index"])
	assert.Equal(t, "alice", stmt.Params["from_id"])
	assert.Equal(t, "bob", stmt.Params["to_id"])
	assert.Equal(t, "knows", stmt.Params["relation_type_id"])
}

// TestCompileInsertRelationNodeScopesIndexAttributeMergeToRelation guards
// against a standalone `MERGE (idx_attr:Attribute {id: $index_attr_id})`:
// $index_attr_id is always the reserved RelationIndexID constant, so merged
// on its own that pattern is shared by every node-form relation in the
// database and two coexisting relations (e.g. index "0" and index "1") would
// collapse onto one Attribute node and corrupt each other's ordering value.
// The index Attribute node must instead be merged as part of the same
// combined path as the owning relation's own ATTRIBUTE edge.
func TestCompileInsertRelationNodeScopesIndexAttributeMergeToRelation(t *testing.T) {
	abc := compileInsertRelationNode(InsertRelationNodeParams{
		ID:           "abc",
		From:         "alice",
		To:           "bob",
		RelationType: "knows",
		Index:        "0",
		SpaceID:      "ROOT",
		SpaceVersion: "0",
		Now:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	dev := compileInsertRelationNode(InsertRelationNodeParams{
		ID:           "dev",
		From:         "alice",
		To:           "charlie",
		RelationType: "knows",
		Index:        "1",
		SpaceID:      "ROOT",
		SpaceVersion: "0",
		Now:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.NotContains(t, abc.Cypher, "MERGE (idx_attr:Attribute")
	assert.NotContains(t, dev.Cypher, "MERGE (idx_attr:Attribute")
	assert.Contains(t, abc.Cypher, "MERGE (rel) -[idx_edge:ATTRIBUTE {space_id: $space_id, min_version: $space_version}]-> (idx_attr:Attribute {id: $index_attr_id})")
	assert.Equal(t, abc.Cypher, dev.Cypher)
	assert.Equal(t, "abc", abc.Params["id"])
	assert.Equal(t, "dev", dev.Params["id"])
	assert.Equal(t, "0", abc.Params["index"])
	assert.Equal(t, "1", dev.Params["index"])
}

func TestDeleteRelationNodeRetiresAllFourEdges(t *testing.T) {
	stmt := compileDeleteRelationNode(DeleteRelationNodeParams{
		ID:      "abc",
		SpaceID: "ROOT",
		Version: "1",
		Now:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Contains(t, stmt.Cypher, "`"+RelationFromAttrID+"`")
	assert.Contains(t, stmt.Cypher, "`"+RelationToAttrID+"`")
	assert.Contains(t, stmt.Cypher, "`"+RelationTypeAttrID+"`")
	assert.Contains(t, stmt.Cypher, "idx_edge:ATTRIBUTE {space_id: $space_id}]-> (:Attribute {id: $index_attr_id})")
	assert.Equal(t, "1", stmt.Params["version"])
}

func TestCompileFindOneRelationEdgeMatchesByID(t *testing.T) {
	stmt := compileFindOneRelationEdge(FindOneRelationEdgeParams{
		ID:      "abc",
		SpaceID: "ROOT",
	})

	assert.Contains(t, stmt.Cypher, "[r:RELATION {id: $id, space_id: $space_id}]")
	assert.Contains(t, stmt.Cypher, "WHERE r.max_version IS NULL")
	assert.Contains(t, stmt.Cypher, "LIMIT 1")
	assert.Equal(t, "abc", stmt.Params["id"])
	assert.Equal(t, "ROOT", stmt.Params["space_id"])
}

func TestCompileFindOneRelationEdgeAtVersion(t *testing.T) {
	stmt := compileFindOneRelationEdge(FindOneRelationEdgeParams{
		ID:      "abc",
		SpaceID: "ROOT",
		Version: AtVersion("3"),
	})

	assert.Contains(t, stmt.Cypher, "r.min_version <= $version1")
	assert.Equal(t, "3", stmt.Params["version1"])
}

func TestCompileFindOneRelationNodeMatchesFourRoleEdges(t *testing.T) {
	stmt := compileFindOneRelationNode(FindOneRelationNodeParams{
		ID:      "abc",
		SpaceID: "ROOT",
	})

	assert.Contains(t, stmt.Cypher, "MATCH (rel:Entity:Relation {id: $id})")
	assert.Contains(t, stmt.Cypher, "from_edge:`"+RelationFromAttrID+"`")
	assert.Contains(t, stmt.Cypher, "to_edge:`"+RelationToAttrID+"`")
	assert.Contains(t, stmt.Cypher, "relation_type_edge:`"+RelationTypeAttrID+"`")
	assert.Contains(t, stmt.Cypher, "idx_attr:Attribute {id: $index_attr_id})")
	assert.Contains(t, stmt.Cypher, "from_edge.max_version IS NULL")
	assert.Contains(t, stmt.Cypher, "to_edge.max_version IS NULL")
	assert.Contains(t, stmt.Cypher, "relation_type_edge.max_version IS NULL")
	assert.Contains(t, stmt.Cypher, "idx_edge.max_version IS NULL")
	assert.Contains(t, stmt.Cypher, "idx_attr.value AS index")
	assert.Equal(t, RelationIndexID, stmt.Params["index_attr_id"])
}

func TestCompileFindOneRelationNodeAtVersion(t *testing.T) {
	stmt := compileFindOneRelationNode(FindOneRelationNodeParams{
		ID:      "abc",
		SpaceID: "ROOT",
		Version: AtVersion("2"),
	})

	assert.Contains(t, stmt.Cypher, "from_edge.min_version <= $version1")
	assert.Contains(t, stmt.Cypher, "idx_edge.min_version <= $version4")
	assert.Equal(t, "2", stmt.Params["version1"])
	assert.Equal(t, "2", stmt.Params["version4"])
}
