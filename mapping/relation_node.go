package mapping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evalgo-org/kgraph/graphdb"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// roleEdge names one of the three structural role-edges a node-form relation
// carries to its from/to/relation_type endpoints. The fourth role — the
// index — is an ATTRIBUTE edge to a dedicated Attribute node and is handled
// separately since it shares the ATTRIBUTE edge kind with ordinary
// attributes.
type roleEdge struct {
	field string // Go-side short name, also used to build unique Cypher variable names
	label string // reserved id string used as the edge's Cypher label
	param string // name of the endpoint-id parameter
}

var relationRoleEdges = []roleEdge{
	{field: "from", label: RelationFromAttrID, param: "from_id"},
	{field: "to", label: RelationToAttrID, param: "to_id"},
	{field: "relation_type", label: RelationTypeAttrID, param: "relation_type_id"},
}

// InsertRelationNodeParams names the inputs to a node-form relation insert.
type InsertRelationNodeParams struct {
	ID           string
	From         string
	To           string
	RelationType string
	Index        string
	SpaceID      string
	SpaceVersion string
	Now          time.Time
	Block        string
}

// InsertRelationNode upserts the relation's own entity node, stamps
// timestamps, retires any of the three role-edges and the index ATTRIBUTE
// edge whose min_version differs from SpaceVersion, then upserts all four at
// SpaceVersion — one transaction, matching the "keep both forms in sync"
// invariant.
func InsertRelationNode(ctx context.Context, driver *graphdb.Driver, p InsertRelationNodeParams) error {
	_, err := driver.WriteTx(ctx, compileInsertRelationNode(p))
	return storageErr("mapping: insert relation node", err)
}

func compileInsertRelationNode(p InsertRelationNodeParams) graphdb.Statement {
	var b strings.Builder

	b.WriteString(`MERGE (rel:Entity:Relation {id: $id})
ON CREATE SET rel.created_at = $now, rel.created_at_block = $block
SET rel.updated_at = $now, rel.updated_at_block = $block
WITH rel
`)

	for _, role := range relationRoleEdges {
		fmt.Fprintf(&b, `OPTIONAL MATCH (rel) -[old_%[1]s:`+"`%[2]s`"+` {space_id: $space_id}]-> ()
  WHERE old_%[1]s.max_version IS NULL AND old_%[1]s.min_version <> $space_version
SET old_%[1]s.max_version = $space_version
WITH rel
MATCH (%[1]s_node:Entity {id: $%[3]s})
MERGE (rel) -[%[1]s_edge:`+"`%[2]s`"+` {space_id: $space_id, min_version: $space_version}]-> (%[1]s_node)
SET %[1]s_edge.max_version = null
WITH rel
`, role.field, role.label, role.param)
	}

	fmt.Fprintf(&b, `OPTIONAL MATCH (rel) -[old_idx:ATTRIBUTE {space_id: $space_id}]-> (:Attribute {id: $index_attr_id})
  WHERE old_idx.max_version IS NULL AND old_idx.min_version <> $space_version
SET old_idx.max_version = $space_version
WITH rel
MERGE (rel) -[idx_edge:ATTRIBUTE {space_id: $space_id, min_version: $space_version}]-> (idx_attr:Attribute {id: $index_attr_id})
SET idx_edge.max_version = null, idx_attr.value = $index, idx_attr.value_type = $index_value_type
`)

	return graphdb.Statement{
		Cypher: b.String(),
		Params: map[string]any{
			"id":               p.ID,
			"from_id":          p.From,
			"to_id":            p.To,
			"relation_type_id": p.RelationType,
			"index":            p.Index,
			"index_attr_id":    RelationIndexID,
			"index_value_type": string(ValueTypeText),
			"space_id":         p.SpaceID,
			"space_version":    p.SpaceVersion,
			"now":              p.Now.UTC().Format(time.RFC3339),
			"block":            p.Block,
		},
	}
}

// RelationNode is the node-form representation of a relation read back out of
// the graph: the relation's own entity node plus the endpoints its four
// role-edges point at.
type RelationNode struct {
	Node         EntityNode
	From         string
	To           string
	RelationType string
	Index        string
	SpaceID      string
	MinVersion   string
	MaxVersion   string // "" means current
}

// FindOneRelationNodeParams names the inputs to a node-form relation read.
type FindOneRelationNodeParams struct {
	ID      string
	SpaceID string
	Version VersionFilter
}

// FindOneRelationNode reads the node-form relation with the given id: its
// entity node, the three role-edge endpoints, and the index attribute, all
// constrained to the same space/version window. Returns (nil, nil) when the
// relation has no visible role-edges in that space/version.
func FindOneRelationNode(ctx context.Context, driver *graphdb.Driver, p FindOneRelationNodeParams) (*RelationNode, error) {
	records, err := driver.ReadTx(ctx, compileFindOneRelationNode(p))
	if err != nil {
		return nil, storageErr("mapping: find relation node", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return relationNodeFromRecord(records[0])
}

func compileFindOneRelationNode(p FindOneRelationNodeParams) graphdb.Statement {
	counter := &paramCounter{}

	qp := MatchQuery("(rel:Entity:Relation {id: $id})").
		Param("id", p.ID).
		Param("space_id", p.SpaceID).
		Param("index_attr_id", RelationIndexID).
		Return("rel.id AS id").
		Return("rel.created_at AS created_at").
		Return("rel.created_at_block AS created_at_block").
		Return("rel.updated_at AS updated_at").
		Return("rel.updated_at_block AS updated_at_block").
		Limit(1)

	for _, role := range relationRoleEdges {
		qp = qp.Match(fmt.Sprintf("(rel) -[%[1]s_edge:`%[2]s` {space_id: $space_id}]-> (%[1]s_node:Entity)", role.field, role.label)).
			Return(fmt.Sprintf("%[1]s_node.id AS %[1]s_id", role.field))
		qp = qp.Merge(p.Version.Render(counter, role.field+"_edge"))
	}

	qp = qp.Match("(rel) -[idx_edge:ATTRIBUTE {space_id: $space_id}]-> (idx_attr:Attribute {id: $index_attr_id})").
		Return("idx_attr.value AS index").
		Return("idx_edge.space_id AS space_id").
		Return("idx_edge.min_version AS min_version").
		Return("idx_edge.max_version AS max_version")
	qp = qp.Merge(p.Version.Render(counter, "idx_edge"))

	return qp.Compile()
}

func relationNodeFromRecord(rec *neo4j.Record) (*RelationNode, error) {
	id, err := getString(rec, "id")
	if err != nil {
		return nil, err
	}
	fromID, err := getString(rec, "from_id")
	if err != nil {
		return nil, err
	}
	toID, err := getString(rec, "to_id")
	if err != nil {
		return nil, err
	}
	relationTypeID, err := getString(rec, "relation_type_id")
	if err != nil {
		return nil, err
	}
	index, err := getString(rec, "index")
	if err != nil {
		return nil, err
	}
	spaceID, err := getString(rec, "space_id")
	if err != nil {
		return nil, err
	}
	minVersion, err := getString(rec, "min_version")
	if err != nil {
		return nil, err
	}
	maxVersion, _ := getOptionalVersion(rec, "max_version")

	return &RelationNode{
		Node: EntityNode{
			ID:             id,
			CreatedAt:      getOptionalString(rec, "created_at"),
			CreatedAtBlock: getOptionalString(rec, "created_at_block"),
			UpdatedAt:      getOptionalString(rec, "updated_at"),
			UpdatedAtBlock: getOptionalString(rec, "updated_at_block"),
		},
		From:         fromID,
		To:           toID,
		RelationType: relationTypeID,
		Index:        index,
		SpaceID:      spaceID,
		MinVersion:   minVersion,
		MaxVersion:   maxVersion,
	}, nil
}

// DeleteRelationNodeParams names the inputs to a node-form relation
// retirement.
type DeleteRelationNodeParams struct {
	ID      string
	SpaceID string
	Version string
	Now     time.Time
	Block   string
}

// DeleteRelationNode retires all four role-edges for (relation_id, space_id)
// by setting max_version = Version, and refreshes the relation entity's
// updated_at/updated_at_block.
func DeleteRelationNode(ctx context.Context, driver *graphdb.Driver, p DeleteRelationNodeParams) error {
	_, err := driver.WriteTx(ctx, compileDeleteRelationNode(p))
	return storageErr("mapping: delete relation node", err)
}

func compileDeleteRelationNode(p DeleteRelationNodeParams) graphdb.Statement {
	var b strings.Builder

	b.WriteString(`MATCH (rel:Entity:Relation {id: $id})
SET rel.updated_at = $now, rel.updated_at_block = $block
WITH rel
`)
	for _, role := range relationRoleEdges {
		fmt.Fprintf(&b, `OPTIONAL MATCH (rel) -[%[1]s_edge:`+"`%[2]s`"+` {space_id: $space_id}]-> ()
  WHERE %[1]s_edge.max_version IS NULL
SET %[1]s_edge.max_version = $version
WITH rel
`, role.field, role.label)
	}
	b.WriteString(`OPTIONAL MATCH (rel) -[idx_edge:ATTRIBUTE {space_id: $space_id}]-> (:Attribute {id: $index_attr_id})
  WHERE idx_edge.max_version IS NULL
SET idx_edge.max_version = $version
`)

	return graphdb.Statement{
		Cypher: b.String(),
		Params: map[string]any{
			"id":            p.ID,
			"space_id":      p.SpaceID,
			"version":       p.Version,
			"index_attr_id": RelationIndexID,
			"now":           p.Now.UTC().Format(time.RFC3339),
			"block":         p.Block,
		},
	}
}
