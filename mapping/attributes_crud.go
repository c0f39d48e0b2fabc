package mapping

import (
	"context"
	"time"

	"github.com/evalgo-org/kgraph/graphdb"
)

// InsertAttributesParams names every input to a bulk attribute insert.
// Now and Block are supplied by the caller rather than read
// from the system clock inside this package, so that a batch of writes
// sharing one space_version can also share one timestamp.
type InsertAttributesParams struct {
	EntityID     string
	SpaceID      string
	SpaceVersion string
	Attributes   Attributes
	Now          time.Time
	Block        string
}

// InsertAttributes performs the bulk attribute insert in a
// single transaction: upsert the entity node (stamping created_at/
// created_at_block on first write, always refreshing updated_at/
// updated_at_block), retire any existing max_version-null ATTRIBUTE edge for
// an attribute whose min_version differs from space_version, then upsert the
// new edge at min_version = space_version.
func InsertAttributes(ctx context.Context, driver *graphdb.Driver, p InsertAttributesParams) error {
	_, err := driver.WriteTx(ctx, compileInsertAttributes(p))
	return storageErr("mapping: insert attributes", err)
}

func compileInsertAttributes(p InsertAttributesParams) graphdb.Statement {
	attrs := make([]map[string]any, 0, len(p.Attributes))
	for id, node := range p.Attributes {
		attrs = append(attrs, map[string]any{
			"id":         id,
			"value":      node.Value.Value,
			"value_type": string(node.Value.ValueType),
			"format":     node.Value.Options.Format,
			"unit":       node.Value.Options.Unit,
			"language":   node.Value.Options.Language,
			"embedding":  float64SliceToParam(node.Embedding),
		})
	}

	const cypher = `MERGE (e:Entity {id: $entity_id})
ON CREATE SET e.created_at = $now, e.created_at_block = $block
SET e.updated_at = $now, e.updated_at_block = $block
WITH e
UNWIND $attributes AS attr
OPTIONAL MATCH (e) -[old:ATTRIBUTE {space_id: $space_id}]-> (:Attribute {id: attr.id})
  WHERE old.max_version IS NULL AND old.min_version <> $space_version
SET old.max_version = $space_version
WITH e, attr
MERGE (e) -[r:ATTRIBUTE {space_id: $space_id, min_version: $space_version}]-> (a:Attribute {id: attr.id})
SET r.max_version = null,
    a.value = attr.value,
    a.value_type = attr.value_type,
    a.format = attr.format,
    a.unit = attr.unit,
    a.language = attr.language,
    a.embedding = attr.embedding
WITH a, attr
FOREACH (_ IN CASE WHEN attr.embedding IS NOT NULL THEN [1] ELSE [] END | SET a:Indexed)
`

	return graphdb.Statement{
		Cypher: cypher,
		Params: map[string]any{
			"entity_id":     p.EntityID,
			"space_id":      p.SpaceID,
			"space_version": p.SpaceVersion,
			"now":           p.Now.UTC().Format(time.RFC3339),
			"block":         p.Block,
			"attributes":    attrs,
		},
	}
}

// FindOneAttributesParams names the inputs to a versioned attribute read.
type FindOneAttributesParams struct {
	EntityID string
	SpaceID  string
	Version  VersionFilter // zero value selects the current (unretired) state
}

// FindOneAttributes reads the Attributes bag visible for (entity, space,
// version), returning (nil, nil) when the entity carries no attributes in
// that space at that version.
func FindOneAttributes(ctx context.Context, driver *graphdb.Driver, p FindOneAttributesParams) (Attributes, error) {
	records, err := driver.ReadTx(ctx, compileFindOneAttributes(p))
	if err != nil {
		return nil, storageErr("mapping: find attributes", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	out := NewAttributes()
	for _, rec := range records {
		node, err := attributeNodeFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = out.Attribute(node)
	}
	return out, nil
}

func compileFindOneAttributes(p FindOneAttributesParams) graphdb.Statement {
	counter := &paramCounter{}
	qp := MatchQuery("(e:Entity {id: $entity_id}) -[r:ATTRIBUTE {space_id: $space_id}]-> (a:Attribute)").
		Param("entity_id", p.EntityID).
		Param("space_id", p.SpaceID).
		Return("a.id AS id").
		Return("a.value AS value").
		Return("a.value_type AS value_type").
		Return("a.format AS format").
		Return("a.unit AS unit").
		Return("a.language AS language").
		Return("a.embedding AS embedding")
	qp = qp.Merge(p.Version.Render(counter, "r"))
	return qp.Compile()
}
