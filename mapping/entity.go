package mapping

import (
	"context"
	"fmt"
	"time"

	"github.com/evalgo-org/kgraph/graphdb"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// EntityNode carries an entity's id and system timestamp properties,
// independent of its typed attribute payload.
type EntityNode struct {
	ID             string
	CreatedAt      string
	CreatedAtBlock string
	UpdatedAt      string
	UpdatedAtBlock string
}

// Entity composes an EntityNode, a typed attribute payload, and the entity's
// assigned type ids. The application supplies IntoAttributes/FromAttributes
// conversions for T.
type Entity[T any] struct {
	Node    EntityNode
	Payload T
	Types   []string
}

// InsertEntityParams names the inputs to a typed entity insert.
type InsertEntityParams struct {
	EntityID     string
	SpaceID      string
	SpaceVersion string
	Types        []string
	Now          time.Time
	Block        string
}

// InsertEntity writes attrs via InsertAttributes, then inserts one TYPES
// relation per type id, deriving each relation's id deterministically from
// (space_id, entity_id, TYPES_ATTRIBUTE, type_id) so repeated inserts of the
// same entity and types are idempotent.
func InsertEntity(ctx context.Context, driver *graphdb.Driver, p InsertEntityParams, attrs Attributes) error {
	if err := InsertAttributes(ctx, driver, InsertAttributesParams{
		EntityID:     p.EntityID,
		SpaceID:      p.SpaceID,
		SpaceVersion: p.SpaceVersion,
		Attributes:   attrs,
		Now:          p.Now,
		Block:        p.Block,
	}); err != nil {
		return err
	}

	for _, typeID := range p.Types {
		relID := TypesRelationID(p.SpaceID, p.EntityID, typeID)
		if err := InsertRelationEdge(ctx, driver, InsertRelationEdgeParams{
			ID:           relID,
			From:         p.EntityID,
			To:           typeID,
			RelationType: TypesRelationKind,
			Index:        "0",
			SpaceID:      p.SpaceID,
			SpaceVersion: p.SpaceVersion,
			Now:          p.Now,
			Block:        p.Block,
		}); err != nil {
			return err
		}
	}
	return nil
}

// FindOneEntityParams names the inputs to a typed entity read.
type FindOneEntityParams struct {
	EntityID string
	SpaceID  string
	Version  VersionFilter
}

// FindOneEntity reads an entity's attributes, decodes them into dst via
// FromAttributes, and resolves its type set from TYPES relations. Returns a
// nil EntityNode (no error) when the entity carries no attributes in that
// space/version.
func FindOneEntity(ctx context.Context, driver *graphdb.Driver, p FindOneEntityParams, dst FromAttributes) (*EntityNode, []string, error) {
	attrs, err := FindOneAttributes(ctx, driver, FindOneAttributesParams{
		EntityID: p.EntityID,
		SpaceID:  p.SpaceID,
		Version:  p.Version,
	})
	if err != nil {
		return nil, nil, err
	}
	if attrs == nil {
		return nil, nil, nil
	}

	if err := dst.FromAttributes(attrs); err != nil {
		return nil, nil, err
	}

	types, err := findEntityTypes(ctx, driver, p.EntityID, p.Version)
	if err != nil {
		return nil, nil, err
	}

	node, err := findEntityNode(ctx, driver, p.EntityID)
	if err != nil {
		return nil, nil, err
	}
	if node == nil {
		node = &EntityNode{ID: p.EntityID}
	}
	return node, types, nil
}

// findEntityNode reads entityID's system timestamp properties. Returns
// (nil, nil) when the node does not exist, which FindOneEntity treats as an
// entity implicitly created by an attribute write it can still describe by id.
func findEntityNode(ctx context.Context, driver *graphdb.Driver, entityID string) (*EntityNode, error) {
	stmt := compileFindEntityNode(entityID)
	records, err := driver.ReadTx(ctx, stmt)
	if err != nil {
		return nil, storageErr("mapping: find entity node", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	rec := records[0]
	id, err := getString(rec, "id")
	if err != nil {
		return nil, err
	}
	return &EntityNode{
		ID:             id,
		CreatedAt:      getOptionalString(rec, "created_at"),
		CreatedAtBlock: getOptionalString(rec, "created_at_block"),
		UpdatedAt:      getOptionalString(rec, "updated_at"),
		UpdatedAtBlock: getOptionalString(rec, "updated_at_block"),
	}, nil
}

func compileFindEntityNode(entityID string) graphdb.Statement {
	return MatchQuery("(e:Entity {id: $entity_id})").
		Param("entity_id", entityID).
		Return("e.id AS id").
		Return("e.created_at AS created_at").
		Return("e.created_at_block AS created_at_block").
		Return("e.updated_at AS updated_at").
		Return("e.updated_at_block AS updated_at_block").
		Limit(1).
		Compile()
}

// findEntityTypes resolves entityID's type set from outbound TYPES relations.
// TYPES relations carry a space_id like any other edge but this reader does
// not filter by it: a type assigned from any space is visible.
func findEntityTypes(ctx context.Context, driver *graphdb.Driver, entityID string, version VersionFilter) ([]string, error) {
	counter := &paramCounter{}
	qp := MatchQuery("(e:Entity {id: $entity_id}) -[r:RELATION {relation_type: $relation_type}]-> (t:Entity)").
		Param("entity_id", entityID).
		Param("relation_type", TypesRelationKind).
		Return("t.id AS type_id")
	qp = qp.Merge(version.Render(counter, "r"))

	records, err := driver.ReadTx(ctx, qp.Compile())
	if err != nil {
		return nil, storageErr("mapping: find entity types", err)
	}

	types := make([]string, 0, len(records))
	for _, rec := range records {
		id, err := getString(rec, "type_id")
		if err != nil {
			return nil, err
		}
		types = append(types, id)
	}
	return types, nil
}

// EntityRow is one decoded row of a FindManyEntities stream: the entity's id
// and its collected Attributes bag, ready for the caller's FromAttributes
// decoder.
type EntityRow struct {
	EntityID   string
	Attributes Attributes
}

// EntityStream is a lazy cursor over FindManyEntities results.
type EntityStream struct {
	inner *graphdb.ResultStream
}

// FindManyEntities composes filter into a single query that matches entities
// and projects their attribute nodes in a collected list per entity, so one
// round trip produces every row's full attribute set.
func FindManyEntities(ctx context.Context, driver *graphdb.Driver, filter EntityFilter, version VersionFilter) (*EntityStream, error) {
	stream, err := driver.Stream(ctx, compileFindManyEntities(filter, version))
	if err != nil {
		return nil, storageErr("mapping: find many entities", err)
	}
	return &EntityStream{inner: stream}, nil
}

func compileFindManyEntities(filter EntityFilter, version VersionFilter) graphdb.Statement {
	counter := &paramCounter{}
	// The filter's WHERE must precede the WITH so it constrains the matched
	// entities; the version WHERE belongs to the OPTIONAL MATCH and only limits
	// which attributes are collected.
	matched := MatchQuery("(e:Entity)").Merge(filter.Build(counter, "e"))
	attrs := OptionalMatchQuery("(e) -[r:ATTRIBUTE]-> (a:Attribute)").
		Merge(version.Render(counter, "r")).
		Return("e.id AS entity_id").
		Return("collect({id: a.id, value: a.value, value_type: a.value_type, format: a.format, unit: a.unit, language: a.language, embedding: a.embedding}) AS attrs")
	return matched.With("DISTINCT e", attrs).Compile()
}

// Next advances the cursor.
func (s *EntityStream) Next(ctx context.Context) bool { return s.inner.Next(ctx) }

// Row decodes the current row's entity id and collected attribute bag.
func (s *EntityStream) Row() (EntityRow, error) { return entityRowFromRecord(s.inner.Record()) }

// Err returns the error, if any, that ended the stream.
func (s *EntityStream) Err() error { return s.inner.Err() }

// Close releases the stream's pooled connection. Safe to call multiple times.
func (s *EntityStream) Close(ctx context.Context) error { return s.inner.Close(ctx) }

func entityRowFromRecord(rec *neo4j.Record) (EntityRow, error) {
	entityID, err := getString(rec, "entity_id")
	if err != nil {
		return EntityRow{}, err
	}

	raw, ok := rec.Get("attrs")
	if !ok {
		return EntityRow{}, fmt.Errorf("%w: missing column attrs", ErrDeserialization)
	}
	list, ok := raw.([]any)
	if !ok {
		return EntityRow{}, fmt.Errorf("%w: column attrs is not a list", ErrDeserialization)
	}

	attrs := NewAttributes()
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		if id == "" {
			// an entity with no attributes at all yields one null-filled row
			// from the OPTIONAL MATCH; skip it rather than synthesizing a node.
			continue
		}
		node := AttributeNode{
			ID: id,
			Value: Value{
				Value:     stringField(m, "value"),
				ValueType: ValueType(stringField(m, "value_type")),
				Options: Options{
					Format:   stringField(m, "format"),
					Unit:     stringField(m, "unit"),
					Language: stringField(m, "language"),
				},
			},
		}
		if emb, ok := m["embedding"].([]any); ok {
			fs := make([]float64, len(emb))
			for i, v := range emb {
				f, _ := v.(float64)
				fs[i] = f
			}
			node.Embedding = fs
		}
		attrs = attrs.Attribute(node)
	}
	return EntityRow{EntityID: entityID, Attributes: attrs}, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
