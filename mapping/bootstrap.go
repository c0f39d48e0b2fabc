package mapping

import (
	"context"
	"time"

	"github.com/evalgo-org/kgraph/graphdb"
	"golang.org/x/sync/errgroup"
)

// DefaultEmbeddingDimensions is the vector index's dimensionality when the
// caller does not specify one. Chosen to match a common small embedding
// model; real deployments should pass their model's actual dimension.
const DefaultEmbeddingDimensions = 1536

// builtinEntity is one schema entity Bootstrap installs: its id, a Name
// attribute, and an optional Description.
type builtinEntity struct {
	id          string
	name        string
	description string
}

// builtinSchemaEntities lists the built-in type and property entities
// Bootstrap installs in the root space. Name/Description values are the
// entities' own human-readable labels, not the attributes they define.
var builtinSchemaEntities = []builtinEntity{
	{id: SchemaTypeID, name: "Type", description: "A schema type an entity can be assigned."},
	{id: PropertyTypeID, name: "Attribute", description: "A schema property an entity's attributes can carry."},
	{id: RelationSchemaTypeID, name: "Relation", description: "The schema type assigned to relation entities."},
	{id: RelationTypeID, name: "Relation Type", description: "The property naming a relation's kind."},
	{id: NamePropertyID, name: "Name", description: "The human-readable name of an entity."},
	{id: DescriptionPropertyID, name: "Description", description: "A free-text description of an entity."},
	{id: ValueTypeAttributeID, name: "Value Type", description: "The value_type an attribute's value is encoded as."},
	{id: RelationFromAttrID, name: "Relation From", description: "The role-edge to a relation's from endpoint."},
	{id: RelationToAttrID, name: "Relation To", description: "The role-edge to a relation's to endpoint."},
	{id: RelationTypeAttrID, name: "Relation Type Attribute", description: "The role-edge to a relation's type entity."},
}

// BootstrapParams names the inputs to schema initialization.
type BootstrapParams struct {
	// EmbeddingDimensions sets the vector index's dimensionality. Zero uses
	// DefaultEmbeddingDimensions.
	EmbeddingDimensions int
	Now                 time.Time
	Block               string
}

// Bootstrap idempotently installs the indexes and built-in schema entities a
// fresh graph needs before any other operation in this package can be relied
// on : the vector index over Indexed.embedding, a non-unique
// index on Entity.id, a non-unique index on the RELATION edge's id and
// relation_type, and the built-in type/property entities in RootSpaceID at
// BootstrapVersion. Every statement uses IF NOT EXISTS / MERGE so repeated
// calls are safe.
func Bootstrap(ctx context.Context, driver *graphdb.Driver, p BootstrapParams) error {
	// The three index statements are mutually independent (vector index, entity
	// index, relation index) and each is its own transaction, so they fan out
	// concurrently via errgroup rather than running one after another.
	g, gctx := errgroup.WithContext(ctx)
	for _, stmt := range compileBootstrapIndexes(p) {
		stmt := stmt
		g.Go(func() error {
			_, err := driver.WriteTx(gctx, stmt)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return storageErr("mapping: bootstrap indexes", err)
	}

	// Schema entities are installed in declaration order since later entries
	// (e.g. RelationTypeAttrID) read more naturally once earlier ones exist,
	// even though nothing in the data model actually requires the ordering.
	for _, stmt := range compileBootstrapEntities(p) {
		if _, err := driver.WriteTx(ctx, stmt); err != nil {
			return storageErr("mapping: bootstrap schema entities", err)
		}
	}
	return nil
}

func compileBootstrapIndexes(p BootstrapParams) []graphdb.Statement {
	dims := p.EmbeddingDimensions
	if dims <= 0 {
		dims = DefaultEmbeddingDimensions
	}

	return []graphdb.Statement{
		{
			Cypher: `CREATE VECTOR INDEX ` + VectorIndexName + ` IF NOT EXISTS
FOR (a:Indexed) ON (a.embedding)
OPTIONS {indexConfig: {` + "`vector.dimensions`" + `: $dimensions, ` + "`vector.similarity_function`" + `: 'cosine'}}
`,
			Params: map[string]any{"dimensions": dims},
		},
		{
			Cypher: `CREATE INDEX entity_id_index IF NOT EXISTS FOR (e:Entity) ON (e.id)
`,
			Params: map[string]any{},
		},
		{
			Cypher: `CREATE INDEX relation_edge_index IF NOT EXISTS FOR ()-[r:RELATION]-() ON (r.id, r.relation_type)
`,
			Params: map[string]any{},
		},
	}
}

func compileBootstrapEntities(p BootstrapParams) []graphdb.Statement {
	stmts := make([]graphdb.Statement, 0, len(builtinSchemaEntities))
	for _, e := range builtinSchemaEntities {
		attrs := NewAttributes().Text(NamePropertyID, e.name)
		if e.description != "" {
			attrs = attrs.Text(DescriptionPropertyID, e.description)
		}
		stmts = append(stmts, compileInsertAttributes(InsertAttributesParams{
			EntityID:     e.id,
			SpaceID:      RootSpaceID,
			SpaceVersion: BootstrapVersion,
			Attributes:   attrs,
			Now:          p.Now,
			Block:        p.Block,
		}))
	}
	return stmts
}
